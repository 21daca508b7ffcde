package realtime

import (
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"

	"digi3/internal/models"
)

// BoardHub keeps the open board sockets of each project.
type BoardHub struct {
	mu     sync.RWMutex
	boards map[int64]map[*Client]struct{}
}

func NewBoardHub() *BoardHub {
	return &BoardHub{
		boards: make(map[int64]map[*Client]struct{}),
	}
}

func (h *BoardHub) Register(projectID int64, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.boards[projectID] == nil {
		h.boards[projectID] = make(map[*Client]struct{})
	}
	h.boards[projectID][c] = struct{}{}
}

func (h *BoardHub) Unregister(projectID int64, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(projectID, c)
}

// caller holds h.mu
func (h *BoardHub) remove(projectID int64, c *Client) {
	conns, ok := h.boards[projectID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.boards, projectID)
	}
	c.closeSend()
}

// Viewers counts the open sockets on a project board.
func (h *BoardHub) Viewers(projectID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.boards[projectID])
}

// Publish sends ev to every viewer of its project. A viewer whose buffer is
// full is dropped.
func (h *BoardHub) Publish(ev models.BoardEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("[board][publish][err] %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.boards[ev.ProjectID] {
		select {
		case c.send <- data:
		default:
			log.WithField("project_id", ev.ProjectID).Warn("[board][publish][drop] slow viewer")
			h.remove(ev.ProjectID, c)
		}
	}
}
