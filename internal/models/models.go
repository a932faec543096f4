package models

import "time"

// Role is the acting role of a signed-in user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePartner Role = "partner"
	RoleAnalyst Role = "analyst"
	RoleIntern  Role = "intern"
)

// CanAssign reports whether the role may assign leads at all.
func (r Role) CanAssign() bool {
	return r == RoleAdmin || r == RolePartner || r == RoleAnalyst
}

// UniverseStatus is the sub-status of a lead still in the universe stage.
type UniverseStatus string

const (
	UniverseOpen     UniverseStatus = "open"
	UniverseAssigned UniverseStatus = "assigned"
)

// PocStatus is the traffic-light completeness of a company's contacts.
type PocStatus string

const (
	PocRed   PocStatus = "red"
	PocAmber PocStatus = "amber"
	PocGreen PocStatus = "green"
)

type User struct {
	ID             string     `json:"id"`
	OrganizationID int64      `json:"organizationId"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName,omitempty"`
	LastName       string     `json:"lastName,omitempty"`
	Role           Role       `json:"role"`
	IsSuspended    bool       `json:"isSuspended"`
	AnalystID      string     `json:"analystId,omitempty"` // set on interns: the analyst they report to
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// DisplayName prefers the full name and falls back to the email.
func (u User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Email
}

type Company struct {
	ID                  int64      `json:"id"`
	OrganizationID      int64      `json:"organizationId"`
	Name                string     `json:"name"`
	Sector              string     `json:"sector,omitempty"`
	SubSector           string     `json:"subSector,omitempty"`
	Location            string     `json:"location,omitempty"`
	Website             string     `json:"website,omitempty"`
	BusinessDescription string     `json:"businessDescription,omitempty"`
	RevenueInrCr        *float64   `json:"revenueInrCr,omitempty"`
	EbitdaInrCr         *float64   `json:"ebitdaInrCr,omitempty"`
	PatInrCr            *float64   `json:"patInrCr,omitempty"`
	DriveLink           string     `json:"driveLink,omitempty"`
	Collateral          string     `json:"collateral,omitempty"`
	CreatedAt           *time.Time `json:"createdAt,omitempty"`
	UpdatedAt           *time.Time `json:"updatedAt,omitempty"`
}

// Contact is a point of contact (POC) at a company. Up to 3 are tracked per
// company. Name, designation and LinkedIn are the required fields; email and
// phone are optional but feed the completeness traffic light.
type Contact struct {
	ID              int64      `json:"id"`
	OrganizationID  int64      `json:"organizationId"`
	CompanyID       int64      `json:"companyId"`
	Name            string     `json:"name,omitempty"`
	Designation     string     `json:"designation,omitempty"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	LinkedinProfile string     `json:"linkedinProfile,omitempty"`
	IsPrimary       bool       `json:"isPrimary"`
	IsComplete      bool       `json:"isComplete"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

type Lead struct {
	ID                  int64          `json:"id"`
	OrganizationID      int64          `json:"organizationId"`
	CompanyID           int64          `json:"companyId"`
	Stage               Stage          `json:"stage"`
	UniverseStatus      UniverseStatus `json:"universeStatus,omitempty"`
	OwnerAnalystID      string         `json:"ownerAnalystId,omitempty"`
	AssignedTo          string         `json:"assignedTo,omitempty"`
	AssignedInterns     []string       `json:"assignedInterns,omitempty"`
	Notes               string         `json:"notes,omitempty"`
	PocCount            int            `json:"pocCount"`
	PocCompletionStatus PocStatus      `json:"pocCompletionStatus"`
	DefaultPocID        *int64         `json:"defaultPocId,omitempty"`
	BackupPocID         *int64         `json:"backupPocId,omitempty"`
	CreatedAt           *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt           *time.Time     `json:"updatedAt,omitempty"`
	StageUpdatedAt      *time.Time     `json:"stageUpdatedAt,omitempty"`

	// Joined data
	Company      *Company `json:"company,omitempty"`
	AssignedUser *User    `json:"assignedUser,omitempty"`
}

// CompanyName is a display helper for list rows where the join may be absent.
func (l Lead) CompanyName() string {
	if l.Company != nil {
		return l.Company.Name
	}
	return ""
}

// Assigned reports whether the lead has any assignee, analyst-level or intern.
func (l Lead) Assigned() bool {
	return l.AssignedTo != "" || len(l.AssignedInterns) > 0
}

// InterventionType classifies a logged touch-point.
type InterventionType string

const (
	InterventionLinkedinMessage InterventionType = "linkedin_message"
	InterventionCall            InterventionType = "call"
	InterventionWhatsapp        InterventionType = "whatsapp"
	InterventionEmail           InterventionType = "email"
	InterventionMeeting         InterventionType = "meeting"
	InterventionDocument        InterventionType = "document"
)

// Document names that act as gate artifacts when carried by a document-type
// intervention.
const (
	DocumentPDM      = "PDM"
	DocumentMTS      = "MTS"
	DocumentLoE      = "Letter of Engagement"
	DocumentContract = "Contract"
)

// Intervention is a scheduled or logged touch-point tied to a lead. A
// document-type intervention doubles as a gate-satisfaction record keyed by
// DocumentName.
type Intervention struct {
	ID             int64            `json:"id"`
	OrganizationID int64            `json:"organizationId"`
	LeadID         int64            `json:"leadId"`
	UserID         string           `json:"userId"`
	Type           InterventionType `json:"type"`
	ScheduledAt    time.Time        `json:"scheduledAt"`
	Notes          string           `json:"notes,omitempty"`
	DocumentName   string           `json:"documentName,omitempty"`
	CreatedAt      *time.Time       `json:"createdAt,omitempty"`

	// Joined data
	User *User `json:"user,omitempty"`
}

// OutreachActivityType is the granular outreach vocabulary. It is distinct
// from InterventionType: an outreach activity optionally links to a scheduled
// intervention but the two taxonomies are not conflated.
type OutreachActivityType string

const (
	OutreachLinkedinRequestSelf   OutreachActivityType = "linkedin_request_self"
	OutreachLinkedinRequestKvs    OutreachActivityType = "linkedin_request_kvs"
	OutreachLinkedinRequestDinesh OutreachActivityType = "linkedin_request_dinesh"
	OutreachEmailD0Analyst        OutreachActivityType = "email_d0_analyst"
	OutreachEmailD3Analyst        OutreachActivityType = "email_d3_analyst"
	OutreachEmailD7Kvs            OutreachActivityType = "email_d7_kvs"
)

type OutreachStatus string

const (
	OutreachPending   OutreachStatus = "pending"
	OutreachSent      OutreachStatus = "sent"
	OutreachReceived  OutreachStatus = "received"
	OutreachFollowUp  OutreachStatus = "follow_up"
	OutreachInvalid   OutreachStatus = "invalid"
	OutreachCompleted OutreachStatus = "completed"
	OutreachScheduled OutreachStatus = "scheduled"
)

// OutreachActivity is the finer-grained outreach log. A non-nil FollowUpDate
// implicitly schedules a task visible in the Scheduled Tasks view.
type OutreachActivity struct {
	ID             int64                `json:"id"`
	OrganizationID int64                `json:"organizationId"`
	LeadID         int64                `json:"leadId"`
	UserID         string               `json:"userId"`
	ActivityType   OutreachActivityType `json:"activityType"`
	Status         OutreachStatus       `json:"status"`
	ContactDate    *time.Time           `json:"contactDate,omitempty"`
	FollowUpDate   *time.Time           `json:"followUpDate,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	CreatedAt      *time.Time           `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time           `json:"updatedAt,omitempty"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// MaxInvitationRetries caps user-triggered resends of a failed invitation
// email.
const MaxInvitationRetries = 5

type Invitation struct {
	ID             int64            `json:"id"`
	OrganizationID int64            `json:"organizationId"`
	Email          string           `json:"email"`
	Role           Role             `json:"role"`
	ExpiresAt      time.Time        `json:"expiresAt"`
	InvitedBy      string           `json:"invitedBy"`
	Status         InvitationStatus `json:"status"`
	AnalystID      string           `json:"analystId,omitempty"`
	EmailStatus    string           `json:"emailStatus,omitempty"`
	EmailError     string           `json:"emailError,omitempty"`
	RetryCount     int              `json:"retryCount"`
	LastRetryAt    *time.Time       `json:"lastRetryAt,omitempty"`
	CreatedAt      *time.Time       `json:"createdAt,omitempty"`
}

// CanRetry reports whether the retry action should still be offered.
func (i Invitation) CanRetry() bool {
	return i.RetryCount < MaxInvitationRetries
}

// Expired reports whether the invitation is past its expiry.
func (i Invitation) Expired() bool {
	return time.Now().After(i.ExpiresAt)
}

type ActivityLog struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organizationId"`
	LeadID         *int64     `json:"leadId,omitempty"`
	CompanyID      *int64     `json:"companyId,omitempty"`
	UserID         string     `json:"userId"`
	Action         string     `json:"action"`
	EntityType     string     `json:"entityType"`
	EntityID       *int64     `json:"entityId,omitempty"`
	OldValue       string     `json:"oldValue,omitempty"`
	NewValue       string     `json:"newValue,omitempty"`
	Description    string     `json:"description,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

type DashboardMetrics struct {
	TotalLeads     int            `json:"totalLeads"`
	LeadsByStage   map[Stage]int  `json:"leadsByStage"`
	RecentActivity []ActivityLog  `json:"recentActivity"`
	UserRole       Role           `json:"userRole"`
	IsPersonalized bool           `json:"isPersonalized"`
}
