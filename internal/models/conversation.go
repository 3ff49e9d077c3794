package models

import (
	"bytes"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Unread counter field names, one per participant slot.
const (
	UnreadFieldA = "unread_count_a"
	UnreadFieldB = "unread_count_b"
)

// Conversation is the pairwise chat state between two distinct users.
// ParticipantA always holds the smaller id of the pair.
type Conversation struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ParticipantA primitive.ObjectID `bson:"participant_a" json:"participantA"`
	ParticipantB primitive.ObjectID `bson:"participant_b" json:"participantB"`
	LastMessage  string             `bson:"last_message" json:"lastMessage"`
	UnreadCountA int                `bson:"unread_count_a" json:"unreadCountA"`
	UnreadCountB int                `bson:"unread_count_b" json:"unreadCountB"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ConversationView is a conversation with both participants populated.
type ConversationView struct {
	*Conversation
	ParticipantAUser *PublicUser `json:"participantAUser,omitempty"`
	ParticipantBUser *PublicUser `json:"participantBUser,omitempty"`
	UnreadCount      int         `json:"unreadCount"`
}

// CanonicalPair orders two ids so that the same unordered pair always maps to
// the same (A, B) slots.
func CanonicalPair(x, y primitive.ObjectID) (primitive.ObjectID, primitive.ObjectID) {
	if bytes.Compare(x[:], y[:]) <= 0 {
		return x, y
	}
	return y, x
}

func (c *Conversation) HasParticipant(userID primitive.ObjectID) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// UnreadFieldFor returns the counter field owned by userID, or "" when the user
// is not a participant.
func (c *Conversation) UnreadFieldFor(userID primitive.ObjectID) string {
	switch userID {
	case c.ParticipantA:
		return UnreadFieldA
	case c.ParticipantB:
		return UnreadFieldB
	}
	return ""
}

func (c *Conversation) UnreadCountFor(userID primitive.ObjectID) int {
	switch userID {
	case c.ParticipantA:
		return c.UnreadCountA
	case c.ParticipantB:
		return c.UnreadCountB
	}
	return 0
}

// Counterpart returns the other participant of the conversation.
func (c *Conversation) Counterpart(userID primitive.ObjectID) primitive.ObjectID {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}
