// internal/app/features/projects/members.go
package projects

import (
	"context"
	"net/http"

	memberstore "github.com/teamtool/teamtool/internal/app/store/members"
	projectstore "github.com/teamtool/teamtool/internal/app/store/projects"
	taskstore "github.com/teamtool/teamtool/internal/app/store/tasks"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/app/system/httperr"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"github.com/teamtool/teamtool/internal/app/system/txn"
	"github.com/teamtool/teamtool/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// HandleAddMember handles POST /projects/{id}/members. Membership is
// one member document plus the project's member_ids entry; both writes
// run in a transaction when available. Adding the same user twice is
// rejected by the unique index, so retries after a half-applied
// fallback write converge instead of duplicating.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	projectID, ok := pathOID(w, r, "id")
	if !ok {
		return
	}

	var req addMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	targetID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		httperr.Validation(w, "invalid user_id", map[string]string{"user_id": "must be an object id"})
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidRole(role) {
		httperr.Validation(w, "unknown role", map[string]string{"role": "must be one of Admin, Developer, QA, Member"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
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
	if !project.HasMember(actorID) {
		httperr.Forbidden(w, "you are not a member of this project")
		return
	}

	members := memberstore.New(h.DB)
	err = txn.Run(ctx, h.Client, h.Log, func(ctx context.Context) error {
		if err := members.Add(ctx, projectID, targetID, role); err != nil {
			return err
		}
		return projects.AddMemberID(ctx, projectID, targetID)
	})
	switch err {
	case nil:
	case memberstore.ErrDuplicateMember:
		// The member document already exists. Repair member_ids in
		// case an earlier non-transactional add got halfway.
		if repairErr := projects.AddMemberID(ctx, projectID, targetID); repairErr != nil {
			httperr.Internal(w, h.Log, "repair member list", repairErr)
			return
		}
		httperr.Conflict(w, "user is already a member of this project")
		return
	case mongo.ErrNoDocuments:
		httperr.NotFound(w, "user not found")
		return
	default:
		httperr.Internal(w, h.Log, "add member", err)
		return
	}

	h.publish(events.Event{
		Kind:      events.MemberAdded,
		ProjectID: projectID,
		ActorID:   actorID,
		Subject:   targetID.Hex(),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"project_id": projectID,
		"user_id":    targetID,
		"role":       role,
	})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// HandleSetRole handles PATCH /projects/{id}/members/{userId}, changing
// an existing member's role on their member document.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	projectID, ok := pathOID(w, r, "id")
	if !ok {
		return
	}
	targetID, ok := pathOID(w, r, "userId")
	if !ok {
		return
	}

	var req setRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !models.ValidRole(req.Role) {
		httperr.Validation(w, "unknown role", map[string]string{"role": "must be one of Admin, Developer, QA, Member"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	project, err := projectstore.New(h.DB).GetByID(ctx, projectID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httperr.NotFound(w, "project not found")
			return
		}
		httperr.Internal(w, h.Log, "load project", err)
		return
	}
	if !project.HasMember(actorID) {
		httperr.Forbidden(w, "you are not a member of this project")
		return
	}

	err = memberstore.New(h.DB).SetRole(ctx, projectID, targetID, req.Role)
	if err == mongo.ErrNoDocuments {
		httperr.NotFound(w, "user is not a member of this project")
		return
	}
	if err != nil {
		httperr.Internal(w, h.Log, "set member role", err)
		return
	}

	h.publish(events.Event{
		Kind:      events.MemberRoleChanged,
		ProjectID: projectID,
		ActorID:   actorID,
		Subject:   targetID.Hex(),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"project_id": projectID,
		"user_id":    targetID,
		"role":       req.Role,
	})
}

// HandleRemoveMember handles DELETE /projects/{id}/members/{userId}.
// The creator cannot be removed. The removed member's open assignments
// in this project return to the unassigned pool.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserOID(w, r)
	if !ok {
		return
	}
	projectID, ok := pathOID(w, r, "id")
	if !ok {
		return
	}
	targetID, ok := pathOID(w, r, "userId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
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
	if !project.HasMember(actorID) {
		httperr.Forbidden(w, "you are not a member of this project")
		return
	}
	if targetID == project.CreatorID {
		httperr.Validation(w, "the project creator cannot be removed", nil)
		return
	}
	if !project.HasMember(targetID) {
		httperr.NotFound(w, "user is not a member of this project")
		return
	}

	members := memberstore.New(h.DB)
	tasks := taskstore.New(h.DB)
	err = txn.Run(ctx, h.Client, h.Log, func(ctx context.Context) error {
		if _, err := members.Remove(ctx, projectID, targetID); err != nil {
			return err
		}
		if err := projects.RemoveMemberID(ctx, projectID, targetID); err != nil {
			return err
		}
		_, err := tasks.ClearAssignee(ctx, projectID, targetID)
		return err
	})
	if err != nil {
		httperr.Internal(w, h.Log, "remove member", err)
		return
	}

	h.publish(events.Event{
		Kind:      events.MemberRemoved,
		ProjectID: projectID,
		ActorID:   actorID,
		Subject:   targetID.Hex(),
	})

	writeJSON(w, http.StatusOK, map[string]any{"removed": true})
}
