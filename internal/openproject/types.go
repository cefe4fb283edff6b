package openproject

// HAL building blocks. OpenProject responses carry relations in a
// top-level "_links" object and expanded sub-resources in "_embedded".

// Link is a HAL link: an href plus an optional human-readable title.
type Link struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

// Formattable is OpenProject's rich-text wrapper (descriptions,
// comments). Raw is the source text; HTML is server-rendered.
type Formattable struct {
	Format string `json:"format,omitempty"`
	Raw    string `json:"raw"`
	HTML   string `json:"html,omitempty"`
}

// Collection is a HAL list response. Elements live under
// _embedded.elements; Total/Count/Offset/PageSize describe pagination.
type Collection[T any] struct {
	Type     string `json:"_type,omitempty"`
	Total    int    `json:"total"`
	Count    int    `json:"count"`
	Offset   int    `json:"offset,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`

	Embedded struct {
		Elements []T `json:"elements"`
	} `json:"_embedded"`
}

// Elements returns the embedded element slice (possibly nil).
func (c *Collection[T]) Elements() []T { return c.Embedded.Elements }

// WorkPackage is the core schedulable unit (task, bug, feature...).
type WorkPackage struct {
	ID             int          `json:"id"`
	LockVersion    int          `json:"lockVersion"`
	Subject        string       `json:"subject"`
	Description    *Formattable `json:"description,omitempty"`
	StartDate      string       `json:"startDate,omitempty"`
	DueDate        string       `json:"dueDate,omitempty"`
	Date           string       `json:"date,omitempty"`
	PercentageDone *int         `json:"percentageDone,omitempty"`
	CreatedAt      string       `json:"createdAt,omitempty"`
	UpdatedAt      string       `json:"updatedAt,omitempty"`

	Links    WorkPackageLinks     `json:"_links"`
	Embedded *WorkPackageEmbedded `json:"_embedded,omitempty"`
}

// WorkPackageLinks holds the relations of a work package. Absent
// relations decode as zero-valued Links (empty Href).
type WorkPackageLinks struct {
	Self     Link  `json:"self"`
	Project  Link  `json:"project"`
	Type     Link  `json:"type"`
	Status   Link  `json:"status"`
	Priority Link  `json:"priority"`
	Assignee *Link `json:"assignee,omitempty"`
	Parent   *Link `json:"parent,omitempty"`
	Version  *Link `json:"version,omitempty"`
}

// WorkPackageEmbedded holds sub-resources the server chose to expand.
type WorkPackageEmbedded struct {
	Type     *TypeMeta `json:"type,omitempty"`
	Status   *Status   `json:"status,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
	Project  *Project  `json:"project,omitempty"`
	Assignee *User     `json:"assignee,omitempty"`
}

// TypeMeta is a work package type (Task, Bug, Milestone...).
type TypeMeta struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Position    int    `json:"position,omitempty"`
	IsDefault   bool   `json:"isDefault,omitempty"`
	IsMilestone bool   `json:"isMilestone,omitempty"`
}

// Status is a work package status.
type Status struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	IsClosed  bool   `json:"isClosed"`
	IsDefault bool   `json:"isDefault,omitempty"`
	Position  int    `json:"position,omitempty"`
}

// Priority is a work package priority.
type Priority struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	IsActive  bool   `json:"isActive,omitempty"`
	IsDefault bool   `json:"isDefault,omitempty"`
	Position  int    `json:"position,omitempty"`
}

// Project is an OpenProject project.
type Project struct {
	ID          int          `json:"id"`
	Identifier  string       `json:"identifier"`
	Name        string       `json:"name"`
	Active      bool         `json:"active"`
	Public      bool         `json:"public"`
	Description *Formattable `json:"description,omitempty"`
	CreatedAt   string       `json:"createdAt,omitempty"`
	UpdatedAt   string       `json:"updatedAt,omitempty"`

	Links struct {
		Self   Link  `json:"self"`
		Parent *Link `json:"parent,omitempty"`
	} `json:"_links"`
}

// User is an OpenProject principal.
type User struct {
	ID        int    `json:"id"`
	Login     string `json:"login,omitempty"`
	Name      string `json:"name"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Status    string `json:"status,omitempty"`
	Admin     bool   `json:"admin,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Role is a membership role.
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Membership links a principal to a project with one or more roles.
type Membership struct {
	ID          int    `json:"id"`
	LockVersion int    `json:"lockVersion,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`

	Links struct {
		Self      Link   `json:"self"`
		Project   Link   `json:"project"`
		Principal Link   `json:"principal"`
		Roles     []Link `json:"roles"`
	} `json:"_links"`
}

// TimeEntry records hours spent on a work package. Hours is an ISO
// 8601 duration ("PT8H").
type TimeEntry struct {
	ID          int          `json:"id"`
	LockVersion int          `json:"lockVersion,omitempty"`
	Hours       string       `json:"hours"`
	SpentOn     string       `json:"spentOn"`
	Comment     *Formattable `json:"comment,omitempty"`
	CreatedAt   string       `json:"createdAt,omitempty"`

	Links struct {
		Self        Link  `json:"self"`
		Project     Link  `json:"project"`
		WorkPackage Link  `json:"workPackage"`
		User        Link  `json:"user"`
		Activity    *Link `json:"activity,omitempty"`
	} `json:"_links"`
}

// Activity is a time entry activity (Development, Meeting...).
type Activity struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position,omitempty"`
	Default  bool   `json:"default,omitempty"`
}

// Relation is a typed edge between two work packages.
type Relation struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	ReverseType string `json:"reverseType,omitempty"`
	Lag         *int   `json:"lag,omitempty"`
	Description string `json:"description,omitempty"`

	Links struct {
		Self Link `json:"self"`
		From Link `json:"from"`
		To   Link `json:"to"`
	} `json:"_links"`
}

// VersionStatus values accepted by the API.
const (
	VersionOpen   = "open"
	VersionLocked = "locked"
	VersionClosed = "closed"
)

// ProjectVersion is a project milestone/version.
type ProjectVersion struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Description *Formattable `json:"description,omitempty"`
	StartDate   string       `json:"startDate,omitempty"`
	EndDate     string       `json:"endDate,omitempty"`
	Status      string       `json:"status,omitempty"`
	Sharing     string       `json:"sharing,omitempty"`

	Links struct {
		Self            Link `json:"self"`
		DefiningProject Link `json:"definingProject"`
	} `json:"_links"`
}

// News is a project news/announcement item.
type News struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Summary     string       `json:"summary,omitempty"`
	Description *Formattable `json:"description,omitempty"`
	CreatedAt   string       `json:"createdAt,omitempty"`

	Links struct {
		Self    Link  `json:"self"`
		Project Link  `json:"project"`
		Author  *Link `json:"author,omitempty"`
	} `json:"_links"`
}

// WPActivity is a journal entry on a work package (comments and field
// changes).
type WPActivity struct {
	ID        int          `json:"id"`
	Version   int          `json:"version,omitempty"`
	Comment   *Formattable `json:"comment,omitempty"`
	Details   []Formattable `json:"details,omitempty"`
	CreatedAt string       `json:"createdAt,omitempty"`

	Links struct {
		Self Link  `json:"self"`
		User *Link `json:"user,omitempty"`
	} `json:"_links"`
}

// RootInfo is the API root document, used for connection tests.
type RootInfo struct {
	InstanceName    string `json:"instanceName,omitempty"`
	CoreVersion     string `json:"coreVersion,omitempty"`
	InstanceVersion string `json:"instanceVersion,omitempty"`
}
