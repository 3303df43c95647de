package user

import "time"

type SignedInEvent struct {
	Email    string
	Remember bool
	At       time.Time
}

type SignedOutEvent struct {
	Email string
	At    time.Time
}

type RegisteredEvent struct {
	Result Account
}
