package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Verification records one third-party status request on a report.
// Entries are append-only and are not used to restrict repeat confirmations.
type Verification struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Report          primitive.ObjectID `bson:"report" json:"report"`
	User            string             `bson:"user" json:"user"`
	RequestedStatus ReportStatus       `bson:"requestedStatus" json:"requestedStatus"`
	Applied         bool               `bson:"applied" json:"applied"`
	CountAfter      int                `bson:"countAfter" json:"countAfter"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
