package apiclient

// Worker is a developer assigned to a client project.
type Worker struct {
	UniqueID        string `json:"unique_id"`
	WorkerName      string `json:"worker_name"`
	WorkRole        string `json:"work_role"`
	WorkStatus      string `json:"work_status"`
	WorkStartedDate string `json:"work_started_date"`
	WorkerEndDate   string `json:"worker_end_date"`
	AssignedEndDate string `json:"assigned_end_date"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	ClientProject   string `json:"client_project"`
}

// Project is a tracked client project: client intake, project lifecycle,
// domain/server assets, and payment-gateway bookkeeping.
type Project struct {
	UniqueID string   `json:"unique_id"`
	Workers  []Worker `json:"workers"`

	// Client details
	ClientName         string `json:"client_name"`
	Country            string `json:"country"`
	PhoneNumber        string `json:"phone_number"`
	Email              string `json:"email"`
	CompanySector      string `json:"company_sector"`
	About              string `json:"about,omitempty"`
	ClientLogo         string `json:"client_logo,omitempty"`
	ClientApproachDate string `json:"client_approach_date"`

	// Project details
	ProjectName              string `json:"project_name"`
	ProjectType              string `json:"project_type"`
	WorkType                 string `json:"work_type"`
	ScopeOfWork              string `json:"scope_of_work"`
	WorkAssignedDate         string `json:"work_assigned_date"`
	WorkAssignedDeliveryDate string `json:"work_assigned_delivery_date"`
	WorkCompletedDate        string `json:"work_completed_date"`
	ProjectStatus            string `json:"project_status"`

	// Domain details
	DomainName          string `json:"domain_name"`
	DomainProvider      string `json:"domain_provider"`
	DomainOwnedBy       string `json:"domain_owned_by"`
	DomainPurchasedDate string `json:"domain_purchased_date"`
	DomainExpiryDate    string `json:"domain_expiry_date"`
	DomainStatus        string `json:"domain_status"`

	// Server details
	ServerStatus      string `json:"server_status"`
	ServerType        string `json:"server_type"`
	ServerName        string `json:"server_name"`
	ServerOwnedBy     string `json:"server_owned_by"`
	ServerAccruedDate string `json:"server_accrued_date"`
	ServerExpiryDate  string `json:"server_expiry_date"`

	// Payment details
	GatewayUsed            string `json:"gateway_used"`
	PaymentGateway         string `json:"payment_gateway"`
	PaymentGatewayURL      string `json:"payment_gateway_url"`
	PaymentGatewayUsername string `json:"payment_gateway_username"`
	PaymentGatewayPassword string `json:"payment_gateway_password"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Links carries the pagination cursors of a project page.
type Links struct {
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// ProjectPage is one page of filtered projects.
type ProjectPage struct {
	Links       Links     `json:"links"`
	Count       int       `json:"count"`
	TotalPages  int       `json:"total_pages"`
	CurrentPage int       `json:"current_page"`
	PageSize    int       `json:"page_size"`
	Results     []Project `json:"results"`
}

// ProjectFilter mirrors the project listing's query parameters. Zero values
// mean "no filter"; Page 0 is treated as page 1.
type ProjectFilter struct {
	Search       string
	ApproachDate string
	Status       string
	DomainStatus string
	Page         int
}
