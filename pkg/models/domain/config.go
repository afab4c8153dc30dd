package domain

import "fmt"

type ProfileType string

const (
	ProfileTypeAccount ProfileType = "account"
	ProfileTypeToken   ProfileType = "token"
)

// ConfigProfile names one credential set in the user's config file. Account
// profiles carry username and password, token profiles a pre-issued token.
type ConfigProfile struct {
	Name string
	Type ProfileType
}

func (c ConfigProfile) String() string {
	return fmt.Sprintf("%s:%s", c.Type, c.Name)
}
