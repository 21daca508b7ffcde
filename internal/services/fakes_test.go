package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"digi3/internal/models"
	"digi3/internal/repositories"
)

// In-memory repositories mirroring the Postgres behaviour the services rely on.

type memProjects struct {
	items map[int64]*models.Project
	files map[int64][]string
	next  int64
}

func newMemProjects(ps ...*models.Project) *memProjects {
	m := &memProjects{items: map[int64]*models.Project{}, files: map[int64][]string{}}
	for _, p := range ps {
		m.items[p.ID] = p
		if p.ID > m.next {
			m.next = p.ID
		}
	}
	return m
}

func (m *memProjects) copyOf(p *models.Project) *models.Project {
	cp := *p
	cp.Tasks = nil
	cp.Manager = nil
	return &cp
}

func (m *memProjects) Create(_ context.Context, p *models.Project) error {
	m.next++
	p.ID = m.next
	m.items[p.ID] = m.copyOf(p)
	return nil
}

func (m *memProjects) GetByID(_ context.Context, id int64) (*models.Project, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return m.copyOf(p), nil
}

func (m *memProjects) Update(_ context.Context, p *models.Project) error {
	m.items[p.ID] = m.copyOf(p)
	return nil
}

func (m *memProjects) Delete(_ context.Context, id int64) error {
	delete(m.items, id)
	delete(m.files, id)
	return nil
}

func (m *memProjects) List(_ context.Context) ([]*models.Project, error) {
	out := make([]*models.Project, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, m.copyOf(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProjects) AttachmentFiles(_ context.Context, id int64) ([]string, error) {
	return m.files[id], nil
}

func (m *memProjects) CountByStatus(_ context.Context) (map[models.ProjectStatus]int, error) {
	out := map[models.ProjectStatus]int{}
	for _, p := range m.items {
		out[p.Status]++
	}
	return out, nil
}

type memTasks struct {
	projects  *memProjects
	items     map[int64]*models.Task
	next      int64
	updateErr error
}

func newMemTasks(projects *memProjects, ts ...*models.Task) *memTasks {
	m := &memTasks{projects: projects, items: map[int64]*models.Task{}}
	for _, t := range ts {
		m.items[t.ID] = t
		if t.ID > m.next {
			m.next = t.ID
		}
	}
	return m
}

func (m *memTasks) copyOf(t *models.Task) *models.Task {
	cp := *t
	cp.Project = nil
	cp.Comments = nil
	cp.Attachments = nil
	return &cp
}

func (m *memTasks) column(projectID int64, st models.TaskStatus) []*models.Task {
	var out []*models.Task
	for _, t := range m.items {
		if t.ProjectID == projectID && t.Status == st {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (m *memTasks) compact(projectID int64, st models.TaskStatus) {
	for i, t := range m.column(projectID, st) {
		t.Rank = i + 1
	}
}

func (m *memTasks) Store(_ context.Context, t *models.Task) error {
	m.next++
	t.ID = m.next
	t.Rank = len(m.column(t.ProjectID, t.Status)) + 1
	m.items[t.ID] = m.copyOf(t)
	return nil
}

func (m *memTasks) FindByID(_ context.Context, id int64) (*models.Task, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return m.copyOf(t), nil
}

func (m *memTasks) FindAll(_ context.Context, f models.TaskFilter) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range m.items {
		if f.ProjectID != nil && t.ProjectID != *f.ProjectID {
			continue
		}
		if f.AssigneeID != nil && !t.IsAssignedTo(*f.AssigneeID) {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		out = append(out, m.copyOf(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update is all or nothing, like the SQL transaction.
func (m *memTasks) Update(_ context.Context, t *models.Task) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	cur, ok := m.items[t.ID]
	if !ok {
		return errors.New("no such task")
	}
	prev := cur.Status
	cp := m.copyOf(t)
	if cp.Status == "" {
		cp.Status = prev
	}
	if cp.Status == prev {
		cp.Rank = cur.Rank
	} else {
		cp.Rank = len(m.column(cp.ProjectID, cp.Status)) + 1
	}
	m.items[t.ID] = cp
	if cp.Status != prev {
		m.compact(cp.ProjectID, prev)
	}
	t.Status, t.Rank = cp.Status, cp.Rank
	return nil
}

func (m *memTasks) Delete(_ context.Context, id int64) error {
	t, ok := m.items[id]
	if !ok {
		return nil
	}
	delete(m.items, id)
	m.compact(t.ProjectID, t.Status)
	return nil
}

func (m *memTasks) UpdateStatus(_ context.Context, t *models.Task) error {
	cur := m.items[t.ID]
	prev := cur.Status
	cur.UpdatedAt = t.UpdatedAt
	cur.UpdatedByID = t.UpdatedByID
	if prev == t.Status {
		return nil
	}
	cur.Status = t.Status
	cur.Rank = len(m.column(cur.ProjectID, t.Status))
	m.compact(cur.ProjectID, prev)
	t.Rank = cur.Rank
	return nil
}

func (m *memTasks) ApplyReorder(_ context.Context, projectID int64, plan models.ReorderPlan, actorID int64, at time.Time) error {
	if _, ok := m.projects.items[projectID]; !ok {
		return repositories.ErrProjectMissing
	}
	listed := map[int64]bool{}
	var source models.TaskStatus
	for _, c := range plan.Changes {
		t, ok := m.items[c.TaskID]
		if !ok || t.ProjectID != projectID {
			return repositories.ErrForeignTask
		}
		if c.TaskID == plan.MovedTaskID {
			source = t.Status
		} else if t.Status != plan.Destination {
			return repositories.ErrForeignTask
		}
		listed[c.TaskID] = true
	}
	for _, t := range m.column(projectID, plan.Destination) {
		if !listed[t.ID] {
			return repositories.ErrIncompleteColumn
		}
	}
	for _, c := range plan.Changes {
		t := m.items[c.TaskID]
		t.Rank = c.Rank
		if c.Status != nil {
			t.Status = *c.Status
			t.UpdatedAt = at
			id := actorID
			t.UpdatedByID = &id
		}
	}
	if source != plan.Destination {
		m.compact(projectID, source)
	}
	return nil
}

func (m *memTasks) CountByStatus(_ context.Context) (map[models.TaskStatus]int, error) {
	out := map[models.TaskStatus]int{}
	for _, t := range m.items {
		out[t.Status]++
	}
	return out, nil
}

type memUsers struct {
	items map[int64]*models.User
	next  int64
}

func newMemUsers(us ...*models.User) *memUsers {
	m := &memUsers{items: map[int64]*models.User{}}
	for _, u := range us {
		m.items[u.ID] = u
		if u.ID > m.next {
			m.next = u.ID
		}
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	for _, x := range m.items {
		if strings.EqualFold(x.Email, u.Email) {
			return repositories.ErrDuplicate
		}
	}
	m.next++
	u.ID = m.next
	cp := *u
	m.items[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.items {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	for _, x := range m.items {
		if x.ID != u.ID && strings.EqualFold(x.Email, u.Email) {
			return repositories.ErrDuplicate
		}
	}
	cp := *u
	m.items[u.ID] = &cp
	return nil
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

func (m *memUsers) List(_ context.Context, limit, offset int) ([]*models.User, error) {
	var out []*models.User
	for _, u := range m.items {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memUsers) Count(_ context.Context) (int, error) { return len(m.items), nil }

type memCustomers struct {
	items map[int64]*models.Customer
	next  int64
}

func newMemCustomers() *memCustomers { return &memCustomers{items: map[int64]*models.Customer{}} }

func (m *memCustomers) Create(_ context.Context, c *models.Customer) error {
	m.next++
	c.ID = m.next
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *memCustomers) Update(_ context.Context, c *models.Customer) error {
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *memCustomers) Delete(_ context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

func (m *memCustomers) GetByID(_ context.Context, id int64) (*models.Customer, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memCustomers) List(_ context.Context, limit, offset int) ([]*models.Customer, error) {
	var out []*models.Customer
	for _, c := range m.items {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCustomers) FindByName(_ context.Context, name string) ([]*models.Customer, error) {
	var out []*models.Customer
	for _, c := range m.items {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			out = append(out, c)
		}
	}
	return out, nil
}

type memComments struct {
	items []*models.TaskComment
}

func (m *memComments) Create(_ context.Context, c *models.TaskComment) error {
	c.ID = int64(len(m.items) + 1)
	m.items = append(m.items, c)
	return nil
}

func (m *memComments) ListByTask(_ context.Context, taskID int64) ([]*models.TaskComment, error) {
	var out []*models.TaskComment
	for _, c := range m.items {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memAttachments struct {
	items     []*models.TaskAttachment
	createErr error
}

func (m *memAttachments) Create(_ context.Context, a *models.TaskAttachment) error {
	if m.createErr != nil {
		return m.createErr
	}
	a.ID = int64(len(m.items) + 1)
	m.items = append(m.items, a)
	return nil
}

func (m *memAttachments) ListByTask(_ context.Context, taskID int64) ([]*models.TaskAttachment, error) {
	var out []*models.TaskAttachment
	for _, a := range m.items {
		if a.TaskID == taskID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memFiles struct {
	saved   map[string][]byte
	removed []string
	saveErr error
	n       int
}

func newMemFiles() *memFiles { return &memFiles{saved: map[string][]byte{}} }

func (m *memFiles) Save(name string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.n++
	stored := strings.Repeat("f", m.n) + "-" + strings.ToLower(name)
	m.saved[stored] = b
	return stored, nil
}

func (m *memFiles) Remove(stored string) error {
	delete(m.saved, stored)
	m.removed = append(m.removed, stored)
	return nil
}

func (m *memFiles) Path(stored string) (string, error) { return "/files/" + stored, nil }

type event struct {
	kind   string
	userID int64
	taskID int64
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) TaskAssigned(u *models.User, t *models.Task) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{"assigned", u.ID, t.ID})
}

func (n *recordingNotifier) TaskStatusChanged(u *models.User, t *models.Task) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{"status", u.ID, t.ID})
}

type recordingBoard struct {
	mu     sync.Mutex
	events []models.BoardEvent
}

func (b *recordingBoard) Publish(ev models.BoardEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBoard) types() []models.BoardEventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.BoardEventType, len(b.events))
	for i, ev := range b.events {
		out[i] = ev.Type
	}
	return out
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) SendWelcomeEmail(u *models.User) error {
	m.sent = append(m.sent, u.Email)
	return m.err
}
