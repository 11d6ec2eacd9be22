package model

import "time"

// Role tags an identity record with its account kind.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleAgent Role = "AGENT"
	RoleUser  Role = "USER"
)

// Status covers both identity lifecycle and property lifecycle tags.
// Identity records use ACTIVE/INACTIVE; pending properties use
// PENDING/REJECTED; live properties use APPROVED.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusPending  Status = "PENDING"
	StatusRejected Status = "REJECTED"
	StatusApproved Status = "APPROVED"
)

// Availability applies to live properties only.
type Availability string

const (
	AvailabilityAvailable Availability = "AVAILABLE"
	AvailabilityRented    Availability = "RENTED"
	AvailabilitySold      Availability = "SOLD"
)

// IdentityKind discriminates the three disjoint credential tables.
type IdentityKind string

const (
	KindAdmin IdentityKind = "admin"
	KindUser  IdentityKind = "user"
	KindAgent IdentityKind = "agent"
)

// IdentityRef is the tagged result of resolving an email to exactly one
// identity class.
type IdentityRef struct {
	Kind  IdentityKind `json:"kind"`
	ID    string       `json:"id"`
	Email string       `json:"email"`
}

// Admin is a live administrator account.
type Admin struct {
	AdminID        string    `json:"adminId"`
	Bucket         int       `json:"-"`
	Username       string    `json:"username"`
	Fullname       string    `json:"fullname"`
	Email          string    `json:"email"`
	Password       string    `json:"-"`
	MobileNo       string    `json:"mobileNo"`
	MobileHash     string    `json:"-"`
	MobileCipher   string    `json:"-"`
	MobileDEK      string    `json:"-"`
	MobileKeyID    string    `json:"-"`
	Role           Role      `json:"role"`
	Status         Status    `json:"status"`
	ProfilePicture []byte    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Agent is a live, approved agent account.
type Agent struct {
	AgentID        string    `json:"agentId"`
	Bucket         int       `json:"-"`
	UserName       string    `json:"userName"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Password       string    `json:"-"`
	MobileNo       string    `json:"mobileNo"`
	MobileHash     string    `json:"-"`
	MobileCipher   string    `json:"-"`
	MobileDEK      string    `json:"-"`
	MobileKeyID    string    `json:"-"`
	Role           Role      `json:"role"`
	Status         Status    `json:"status"`
	ProfilePicture []byte    `json:"-"`
	Experience     float64   `json:"experience"`
	Rating         float64   `json:"rating"`
	Bio            string    `json:"bio"`
	Approved       bool      `json:"approved"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TemporaryAgent is an agent registration awaiting admin review. It lives
// in its own table and is deleted on approval or rejection.
type TemporaryAgent struct {
	TempAgentID    string    `json:"tempAgentId"`
	Bucket         int       `json:"-"`
	UserName       string    `json:"userName"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Password       string    `json:"-"`
	MobileNo       string    `json:"mobileNo"`
	MobileHash     string    `json:"-"`
	MobileCipher   string    `json:"-"`
	MobileDEK      string    `json:"-"`
	MobileKeyID    string    `json:"-"`
	Status         Status    `json:"status"`
	ProfilePicture []byte    `json:"-"`
	Experience     float64   `json:"experience"`
	Rating         float64   `json:"rating"`
	Bio            string    `json:"bio"`
	Approved       bool      `json:"approved"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// User is a live, OTP-verified end user account.
type User struct {
	UserID         string    `json:"userId"`
	Bucket         int       `json:"-"`
	Username       string    `json:"username"`
	Fullname       string    `json:"fullname"`
	Email          string    `json:"email"`
	Password       string    `json:"-"`
	MobileNo       string    `json:"mobileNo"`
	MobileHash     string    `json:"-"`
	MobileCipher   string    `json:"-"`
	MobileDEK      string    `json:"-"`
	MobileKeyID    string    `json:"-"`
	Address        string    `json:"address"`
	Gender         string    `json:"gender"`
	Role           Role      `json:"role"`
	Status         Status    `json:"status"`
	ProfilePicture []byte    `json:"-"`
	Verified       bool      `json:"verified"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TemporaryUser is a user registration awaiting OTP confirmation. The OTP
// and its expiry are embedded; the row is consumed on successful
// verification.
type TemporaryUser struct {
	TempUserID     string    `json:"tempUserId"`
	Bucket         int       `json:"-"`
	Username       string    `json:"username"`
	Fullname       string    `json:"fullname"`
	Email          string    `json:"email"`
	Password       string    `json:"-"`
	MobileNo       string    `json:"mobileNo"`
	MobileHash     string    `json:"-"`
	MobileCipher   string    `json:"-"`
	MobileDEK      string    `json:"-"`
	MobileKeyID    string    `json:"-"`
	Address        string    `json:"address"`
	Gender         string    `json:"gender"`
	Status         Status    `json:"status"`
	ProfilePicture []byte    `json:"-"`
	OTP            string    `json:"-"`
	OTPExpiry      time.Time `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PendingProperty is a submitted listing awaiting admin review. A property
// id present here is never simultaneously present in the live table;
// promotion copies the row and deletes this one.
type PendingProperty struct {
	PropertyID   string    `json:"propertyId"`
	Bucket       int       `json:"-"`
	AgentID      string    `json:"agentId"`
	Title        string    `json:"title"`
	Price        float64   `json:"price"`
	Size         float64   `json:"size"`
	Address      string    `json:"address"`
	YearBuilt    int       `json:"yearBuilt"`
	PropertyType string    `json:"propertyType"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	Amenities    []string  `json:"amenities"`
	Features     string    `json:"features"`
	Proximity    string    `json:"proximity"`
	Status       Status    `json:"status"`
	Images       [][]byte  `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Property is a live, approved listing.
type Property struct {
	PropertyID   string       `json:"propertyId"`
	Bucket       int          `json:"-"`
	AgentID      string       `json:"agentId"`
	Title        string       `json:"title"`
	Price        float64      `json:"price"`
	Size         float64      `json:"size"`
	Address      string       `json:"address"`
	YearBuilt    int          `json:"yearBuilt"`
	PropertyType string       `json:"propertyType"`
	Bedrooms     int          `json:"bedrooms"`
	Bathrooms    int          `json:"bathrooms"`
	Amenities    []string     `json:"amenities"`
	Features     string       `json:"features"`
	Proximity    string       `json:"proximity"`
	Status       Status       `json:"status"`
	Availability Availability `json:"availability"`
	Images       [][]byte     `json:"-"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Blog is a direct-CRUD article with a single image.
type Blog struct {
	BlogID      string    `json:"blogId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImagePath   string    `json:"imagePath"`
	Image       []byte    `json:"-"`
	Date        time.Time `json:"date"`
}

// PasswordOTP is a one-time password-reset code bound to exactly one
// identity. At most one live OTP exists per identity at a time.
type PasswordOTP struct {
	OTPID     string       `json:"otpId"`
	Code      string       `json:"-"`
	Kind      IdentityKind `json:"kind"`
	IdentityID string      `json:"identityId"`
	Email     string       `json:"email"`
	CreatedAt time.Time    `json:"createdAt"`
	ExpiresAt time.Time    `json:"expiresAt"`
}
