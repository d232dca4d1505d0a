package notifications

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is one in-app message. A push copy goes out through FCM
// when the user has a device token; the in-app record is the durable
// one.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	Data      map[string]string  `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
