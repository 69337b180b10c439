package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MahanteshPatil1214/agency-platform/internal/models"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	FullName    string   `json:"fullName"`
	CompanyName string   `json:"companyName,omitempty"`
	Roles       []string `json:"roles"`
}

// Login exchanges credentials for a bearer token plus the signed-in
// user's profile, which the caller caches in the session store.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, models.User, error) {
	var out struct {
		Token string `json:"token"`
		models.User
	}
	if err := c.do(ctx, "", http.MethodPost, "/auth/login", creds, &out); err != nil {
		return "", models.User{}, err
	}
	return out.Token, out.User, nil
}

func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.do(ctx, "", http.MethodPost, "/auth/register", reg, nil)
}

func (c *Client) GetProfile(ctx context.Context, token string) (models.User, error) {
	var u models.User
	err := c.do(ctx, token, http.MethodGet, "/users/profile", nil, &u)
	return u, err
}

// UpdateProfile returns the updated profile so the caller can refresh
// the cached session copy.
func (c *Client) UpdateProfile(ctx context.Context, token string, u models.User) (models.User, error) {
	var out models.User
	err := c.do(ctx, token, http.MethodPut, "/users/profile", u, &out)
	return out, err
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (c *Client) ChangePassword(ctx context.Context, token string, change PasswordChange) error {
	return c.do(ctx, token, http.MethodPut, "/users/password", change, nil)
}

func (c *Client) ListClients(ctx context.Context, token string) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, token, http.MethodGet, "/users/clients", nil, &out)
	return out, err
}

func (c *Client) ClientStats(ctx context.Context, token string) (models.ClientStats, error) {
	var out models.ClientStats
	err := c.do(ctx, token, http.MethodGet, "/projects/stats", nil, &out)
	return out, err
}

func (c *Client) MyProjects(ctx context.Context, token string) ([]models.Project, error) {
	var out []models.Project
	err := c.do(ctx, token, http.MethodGet, "/projects/my-projects", nil, &out)
	return out, err
}

func (c *Client) ListProjects(ctx context.Context, token string) ([]models.Project, error) {
	var out []models.Project
	err := c.do(ctx, token, http.MethodGet, "/projects", nil, &out)
	return out, err
}

func (c *Client) AllProjects(ctx context.Context, token string) ([]models.Project, error) {
	var out []models.Project
	err := c.do(ctx, token, http.MethodGet, "/projects/all", nil, &out)
	return out, err
}

func (c *Client) CreateProject(ctx context.Context, token string, p models.Project) (models.Project, error) {
	var out models.Project
	err := c.do(ctx, token, http.MethodPost, "/projects/create", p, &out)
	return out, err
}

func (c *Client) GetProject(ctx context.Context, token, id string) (models.Project, error) {
	var out models.Project
	err := c.do(ctx, token, http.MethodGet, "/projects/"+id, nil, &out)
	return out, err
}

// AddTask and UpdateTask return the whole project so views re-derive
// progress from the fresh task list.
func (c *Client) AddTask(ctx context.Context, token, projectID string, t models.Task) (models.Project, error) {
	var out models.Project
	err := c.do(ctx, token, http.MethodPost, "/projects/"+projectID+"/tasks", t, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, token, projectID, taskID string, t models.Task) (models.Project, error) {
	var out models.Project
	err := c.do(ctx, token, http.MethodPut, "/projects/"+projectID+"/tasks/"+taskID, t, &out)
	return out, err
}

// SubmitRequest sends a service request. Token may be empty: the public
// contact form submits unauthenticated.
func (c *Client) SubmitRequest(ctx context.Context, token string, req models.ServiceRequest) error {
	return c.do(ctx, token, http.MethodPost, "/requests/submit", req, nil)
}

func (c *Client) MyRequests(ctx context.Context, token string) ([]models.ServiceRequest, error) {
	var out []models.ServiceRequest
	err := c.do(ctx, token, http.MethodGet, "/requests/my-requests", nil, &out)
	return out, err
}

func (c *Client) AllRequests(ctx context.Context, token string) ([]models.ServiceRequest, error) {
	var out []models.ServiceRequest
	err := c.do(ctx, token, http.MethodGet, "/requests/all", nil, &out)
	return out, err
}

func (c *Client) UpdateRequestStatus(ctx context.Context, token, id, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, token, http.MethodPut, "/requests/"+id+"/status", body, nil)
}

func (c *Client) Contacts(ctx context.Context, token string) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, token, http.MethodGet, "/messages/contacts", nil, &out)
	return out, err
}

func (c *Client) Conversation(ctx context.Context, token, userID string) ([]models.Message, error) {
	var out []models.Message
	err := c.do(ctx, token, http.MethodGet, "/messages/conversation/"+userID, nil, &out)
	return out, err
}

type OutgoingMessage struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Subject    string `json:"subject,omitempty"`
	Priority   string `json:"priority,omitempty"`
}

func (c *Client) SendMessage(ctx context.Context, token string, msg OutgoingMessage) (models.Message, error) {
	var out models.Message
	err := c.do(ctx, token, http.MethodPost, "/messages/send", msg, &out)
	return out, err
}

func (c *Client) AdminStats(ctx context.Context, token string) (models.AdminStats, error) {
	var out models.AdminStats
	err := c.do(ctx, token, http.MethodGet, "/dashboard/admin/stats", nil, &out)
	return out, err
}

// GenerateTasks and CallTool are opaque pass-throughs to the backend's
// AI assistant; the portal does not interpret the payloads.
func (c *Client) GenerateTasks(ctx context.Context, token, description string) (json.RawMessage, error) {
	body := map[string]string{"description": description}
	var out json.RawMessage
	err := c.do(ctx, token, http.MethodPost, "/ai/generate-tasks", body, &out)
	return out, err
}

func (c *Client) CallTool(ctx context.Context, token, name string, args map[string]any) (json.RawMessage, error) {
	body := map[string]any{"name": name, "arguments": args}
	var out json.RawMessage
	err := c.do(ctx, token, http.MethodPost, "/mcp/call", body, &out)
	return out, err
}
