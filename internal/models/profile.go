package models

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type Profile struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// ProfileUpdate carries only the fields the user changed.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

func (u ProfileUpdate) Apply(p *Profile) {
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
}

type NotificationPreferences struct {
	OrderUpdates bool `json:"order_updates"`
	Promotions   bool `json:"promotions"`
	Newsletter   bool `json:"newsletter"`
}

type NotificationPreferencesUpdate struct {
	OrderUpdates *bool `json:"order_updates,omitempty"`
	Promotions   *bool `json:"promotions,omitempty"`
	Newsletter   *bool `json:"newsletter,omitempty"`
}

func (u NotificationPreferencesUpdate) Apply(p *NotificationPreferences) {
	if u.OrderUpdates != nil {
		p.OrderUpdates = *u.OrderUpdates
	}
	if u.Promotions != nil {
		p.Promotions = *u.Promotions
	}
	if u.Newsletter != nil {
		p.Newsletter = *u.Newsletter
	}
}
