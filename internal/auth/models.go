package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles stored on an account. A single accounts collection with a role
// discriminant replaces per-role collections, so every cross-role reference
// (messages, notifications, createdBy) is a plain account id.
const (
	RoleStudent = "student"
	RoleStaff   = "staff"
	RoleHOD     = "hod"
)

type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RegNo        string             `bson:"reg_no,omitempty" json:"reg_no,omitempty"` // Registration number, students only
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Department   string             `bson:"department" json:"department"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	RegNo      string `json:"reg_no"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type Credential struct {
	// Email for staff/HOD, registration number for students.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type CreateStaffRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
}
