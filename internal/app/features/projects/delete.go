// internal/app/features/projects/delete.go
package projects

import (
	"context"
	"net/http"

	"github.com/teamtool/teamtool/internal/app/store/activity"
	memberstore "github.com/teamtool/teamtool/internal/app/store/members"
	projectstore "github.com/teamtool/teamtool/internal/app/store/projects"
	taskstore "github.com/teamtool/teamtool/internal/app/store/tasks"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"github.com/teamtool/teamtool/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type deleteResponse struct {
	Deleted      bool  `json:"deleted"`
	TasksRemoved int64 `json:"tasks_removed"`
	Members      int64 `json:"members_removed"`
}

// HandleDelete handles DELETE /projects/{id}. Only the creator may
// delete a project. The cascade removes tasks first, then member
// documents, then the project itself, so no orphaned tasks survive a
// partial failure: a crash mid-cascade leaves the project intact and
// the delete retryable.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	projectID, ok := pathOID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	projects := projectstore.New(h.DB)
	project, err := projects.GetByID(ctx, projectID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httperr.NotFound(w, "project not found")
			return
		}
		httperr.Internal(w, h.Log, "load project", err)
		return
	}
	if project.CreatorID != userID {
		httperr.Forbidden(w, "only the project creator can delete it")
		return
	}

	members := memberstore.New(h.DB)
	tasks := taskstore.New(h.DB)

	var tasksRemoved, membersRemoved int64
	err = txn.Run(ctx, h.Client, h.Log, func(ctx context.Context) error {
		var err error
		if tasksRemoved, err = tasks.DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		if membersRemoved, err = members.DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		_, err = projects.Delete(ctx, projectID)
		return err
	})
	if err != nil {
		httperr.Internal(w, h.Log, "delete project cascade", err)
		return
	}

	// Old history goes; the deletion event below becomes the tombstone.
	if _, err := activity.New(h.DB).DeleteByProject(ctx, projectID); err != nil {
		h.Log.Warn("purge project activity failed",
			zap.String("project_id", projectID.Hex()),
			zap.Error(err))
	}

	h.publish(events.Event{
		Kind:      events.ProjectDeleted,
		ProjectID: projectID,
		ActorID:   userID,
		Subject:   project.Name,
	})

	writeJSON(w, http.StatusOK, deleteResponse{
		Deleted:      true,
		TasksRemoved: tasksRemoved,
		Members:      membersRemoved,
	})
}
