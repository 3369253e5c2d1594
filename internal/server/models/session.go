package models

// Session is the single recorded login of the CLI. Token is a signed JWT
// naming UserID.
type Session struct {
	UserID string `json:"user_id" mapstructure:"user_id" validate:"required"`
	Token  string `json:"token" mapstructure:"token" validate:"required"`
}

func NewSession(userID, token string) (*Session, error) {
	s := &Session{UserID: userID, Token: token}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}
