package model

// User is the notification recipient resolved for a triggered alert.
type User struct {
	ID    string `bson:"id"`
	Email string `bson:"email"`
	Name  string `bson:"name"`
}
