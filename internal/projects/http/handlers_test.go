package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidboard/bidboard-backend/internal/projects/domain"
	"github.com/bidboard/bidboard-backend/internal/projects/repository"
	"github.com/bidboard/bidboard-backend/internal/projects/service"
)

// memState backs the in-memory gateway fakes for handler tests.
type memState struct {
	projects map[string]*domain.Project
	owners   map[string]string
	seq      int
}

func newMemState() *memState {
	return &memState{projects: make(map[string]*domain.Project), owners: make(map[string]string)}
}

func (m *memState) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memState) guard(ownerID, id string) (*domain.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if m.owners[id] != ownerID {
		return nil, domain.ErrNotAuthorized
	}
	return p, nil
}

type memProjects struct{ *memState }

func (m memProjects) ListByOwner(_ context.Context, ownerID string) ([]domain.Project, error) {
	out := make([]domain.Project, 0)
	for id, p := range m.projects {
		if m.owners[id] == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m memProjects) GetByID(_ context.Context, ownerID, id string) (*domain.Project, error) {
	p, err := m.guard(ownerID, id)
	if err != nil {
		return nil, err
	}
	cp := *p
	cp.LineItems = append([]domain.LineItem(nil), p.LineItems...)
	return &cp, nil
}

func (m memProjects) Insert(_ context.Context, ownerID string, p *domain.Project) (*domain.Project, error) {
	if p.Status == "" {
		p.Status = domain.StatusPending
	}
	if err := domain.ValidateProject(p); err != nil {
		return nil, err
	}
	cp := *p
	cp.ID = m.nextID("proj")
	cp.LineItems = []domain.LineItem{}
	m.projects[cp.ID] = &cp
	m.owners[cp.ID] = ownerID
	out := cp
	return &out, nil
}

func (m memProjects) Update(ctx context.Context, ownerID, id string, fields repository.ProjectUpdate) (*domain.Project, error) {
	p, err := m.guard(ownerID, id)
	if err != nil {
		return nil, err
	}
	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.GC != nil {
		p.GC = *fields.GC
	}
	if fields.Status != nil {
		p.Status = *fields.Status
	}
	return m.GetByID(ctx, ownerID, id)
}

func (m memProjects) Delete(_ context.Context, ownerID, id string) error {
	if _, ok := m.projects[id]; !ok {
		return nil
	}
	if m.owners[id] != ownerID {
		return domain.ErrNotAuthorized
	}
	delete(m.projects, id)
	delete(m.owners, id)
	return nil
}

type memItems struct{ *memState }

func (m memItems) Get(_ context.Context, ownerID, id string) (*domain.LineItem, error) {
	for pid, p := range m.projects {
		for _, li := range p.LineItems {
			if li.ID == id {
				if m.owners[pid] != ownerID {
					return nil, domain.ErrNotAuthorized
				}
				cp := li
				return &cp, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (m memItems) Insert(_ context.Context, ownerID string, li *domain.LineItem) (*domain.LineItem, error) {
	if err := domain.ValidateLineItem(li); err != nil {
		return nil, err
	}
	p, err := m.guard(ownerID, li.ProjectID)
	if err != nil {
		return nil, err
	}
	cp := *li
	cp.ID = m.nextID("li")
	p.LineItems = append(p.LineItems, cp)
	out := cp
	return &out, nil
}

func (m memItems) InsertBatch(ctx context.Context, ownerID, projectID string, items []domain.LineItem) ([]domain.LineItem, error) {
	out := make([]domain.LineItem, 0, len(items))
	for i := range items {
		items[i].ProjectID = projectID
		created, err := m.Insert(ctx, ownerID, &items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *created)
	}
	return out, nil
}

func (m memItems) Update(_ context.Context, ownerID, id string, fields repository.LineItemUpdate) (*domain.LineItem, error) {
	for pid, p := range m.projects {
		for i := range p.LineItems {
			if p.LineItems[i].ID == id {
				if m.owners[pid] != ownerID {
					return nil, domain.ErrNotAuthorized
				}
				if fields.Service != nil {
					p.LineItems[i].Service = *fields.Service
				}
				if fields.Quantity != nil {
					p.LineItems[i].Quantity = *fields.Quantity
				}
				if fields.Unit != nil {
					p.LineItems[i].Unit = *fields.Unit
				}
				if fields.UnitPrice != nil {
					p.LineItems[i].UnitPrice = *fields.UnitPrice
				}
				cp := p.LineItems[i]
				return &cp, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (m memItems) Delete(_ context.Context, ownerID, id string) error {
	for pid, p := range m.projects {
		for i := range p.LineItems {
			if p.LineItems[i].ID == id {
				if m.owners[pid] != ownerID {
					return domain.ErrNotAuthorized
				}
				p.LineItems = append(p.LineItems[:i], p.LineItems[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func setupRouter(t *testing.T, userID string) (*gin.Engine, *memState) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	state := newMemState()
	projectSvc := service.NewProjectService(memProjects{state}, memItems{state}, nil)
	itemSvc := service.NewLineItemService(memItems{state})

	r := gin.New()
	rg := r.Group("/api/v1/projects")
	rg.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	Register(rg, projectSvc, itemSvc)
	return r, state
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func seed(t *testing.T, state *memState, owner string) *domain.Project {
	t.Helper()
	p, err := memProjects{state}.Insert(nil, owner, &domain.Project{Name: "Roof Job", GC: "Acme GC"})
	require.NoError(t, err)
	_, err = memItems{state}.Insert(nil, owner, &domain.LineItem{
		ProjectID: p.ID, Service: "Shingles", Quantity: 1000, Unit: "Sf", UnitPrice: 5,
	})
	require.NoError(t, err)
	return p
}

func TestHandler_ListProjects(t *testing.T) {
	r, state := setupRouter(t, "owner-1")
	seed(t, state, "owner-1")
	seed(t, state, "owner-2")

	rr := doJSON(t, r, http.MethodGet, "/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		OK       bool `json:"ok"`
		Projects []struct {
			ID           string  `json:"id"`
			Name         string  `json:"name"`
			Total        float64 `json:"total"`
			TotalDisplay string  `json:"totalDisplay"`
			StatusTone   string  `json:"statusTone"`
		} `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.OK)

	// Only owner-1's project comes back, with derived fields attached.
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, 5000.0, resp.Projects[0].Total)
	assert.Equal(t, "$5,000.00", resp.Projects[0].TotalDisplay)
	assert.Equal(t, "warning", resp.Projects[0].StatusTone)
}

func TestHandler_CreateProject(t *testing.T) {
	r, _ := setupRouter(t, "owner-1")

	t.Run("creates with defaults", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/v1/projects", gin.H{
			"name": "Mall Buildout",
			"gc":   "BigBuild",
		})
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			Project struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"project"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Project.ID)
		assert.Equal(t, "pending", resp.Project.Status)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/v1/projects", gin.H{"name": "  ", "gc": "BigBuild"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects missing gc", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/v1/projects", gin.H{"name": "Mall Buildout"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_GetProject(t *testing.T) {
	r, state := setupRouter(t, "owner-1")
	mine := seed(t, state, "owner-1")
	theirs := seed(t, state, "owner-2")

	t.Run("returns an owned project", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/v1/projects/"+mine.ID, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing id yields 404", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/v1/projects/nope", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("foreign project yields 403", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/v1/projects/"+theirs.ID, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestHandler_DeleteProject(t *testing.T) {
	r, state := setupRouter(t, "owner-1")
	p := seed(t, state, "owner-1")

	rr := doJSON(t, r, http.MethodDelete, "/api/v1/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Second delete of the same id still succeeds.
	rr = doJSON(t, r, http.MethodDelete, "/api/v1/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_DuplicateProject(t *testing.T) {
	r, state := setupRouter(t, "owner-1")
	p := seed(t, state, "owner-1")

	rr := doJSON(t, r, http.MethodPost, "/api/v1/projects/"+p.ID+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Project struct {
			ID        string            `json:"id"`
			Name      string            `json:"name"`
			LineItems []domain.LineItem `json:"lineItems"`
			Total     float64           `json:"total"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Roof Job (Copy)", resp.Project.Name)
	assert.NotEqual(t, p.ID, resp.Project.ID)
	require.Len(t, resp.Project.LineItems, 1)
	assert.Equal(t, resp.Project.ID, resp.Project.LineItems[0].ProjectID)
	assert.Equal(t, 5000.0, resp.Project.Total)
}

func TestHandler_LineItems(t *testing.T) {
	r, state := setupRouter(t, "owner-1")
	p := seed(t, state, "owner-1")

	t.Run("add requires the numeric fields", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/v1/projects/"+p.ID+"/line-items", gin.H{
			"service": "Labor",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("add returns the extended price", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/v1/projects/"+p.ID+"/line-items", gin.H{
			"service":   "Labor",
			"quantity":  40,
			"unit":      "hours",
			"unitPrice": 85,
		})
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			LineItem struct {
				ID            string  `json:"id"`
				ExtendedPrice float64 `json:"extendedPrice"`
			} `json:"lineItem"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 3400.0, resp.LineItem.ExtendedPrice)
	})

	t.Run("duplicate marks the copy's service label", func(t *testing.T) {
		itemID := state.projects[p.ID].LineItems[0].ID
		rr := doJSON(t, r, http.MethodPost, "/api/v1/projects/"+p.ID+"/line-items/"+itemID+"/duplicate", nil)
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			LineItem struct {
				Service string `json:"service"`
			} `json:"lineItem"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Shingles (Copy)", resp.LineItem.Service)
	})
}
