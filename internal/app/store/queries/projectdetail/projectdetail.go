// Package projectdetail assembles the full project screen in one call:
// the project document, member details with roles, the task board, and
// the users still available to invite.
package projectdetail

import (
	"context"
	"sync"

	"github.com/teamtool/teamtool/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Section names reported in Detail.Partial when a side fetch fails.
const (
	SectionMembers = "members"
	SectionTasks   = "tasks"
	SectionUsers   = "users"
)

// MemberDetail pairs a resolved user with their project role.
type MemberDetail struct {
	User models.User `json:"user"`
	Role string      `json:"role"`
}

// Detail is the assembled project view. Partial lists the sections
// whose fetch failed; their fields hold empty values rather than
// failing the whole screen. The project itself is always present.
type Detail struct {
	Project        models.Project `json:"project"`
	Members        []MemberDetail `json:"members"`
	Tasks          []models.Task  `json:"tasks"`
	AvailableUsers []models.User  `json:"available_users"`
	Partial        []string       `json:"partial,omitempty"`
}

// Load fetches the project and fans out the member, task, and user
// reads concurrently. A missing project returns mongo.ErrNoDocuments;
// side-fetch failures degrade to partial data instead.
func Load(ctx context.Context, db *mongo.Database, projectID primitive.ObjectID) (*Detail, error) {
	var project models.Project
	if err := db.Collection("projects").FindOne(ctx, bson.M{"_id": projectID}).Decode(&project); err != nil {
		return nil, err
	}

	var (
		wg sync.WaitGroup

		roles    map[primitive.ObjectID]string
		tasks    []models.Task
		allUsers []models.User

		rolesErr, tasksErr, usersErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		roles, rolesErr = loadRoles(ctx, db, projectID)
	}()
	go func() {
		defer wg.Done()
		tasks, tasksErr = loadTasks(ctx, db, projectID)
	}()
	go func() {
		defer wg.Done()
		allUsers, usersErr = loadUsers(ctx, db)
	}()
	wg.Wait()

	d := &Detail{Project: project}

	if tasksErr != nil {
		d.Partial = append(d.Partial, SectionTasks)
	} else {
		d.Tasks = tasks
	}

	if usersErr != nil {
		// Without the user documents neither the member list nor the
		// pool of invitable users can be built.
		d.Partial = append(d.Partial, SectionMembers, SectionUsers)
		return d, nil
	}

	if rolesErr != nil {
		d.Partial = append(d.Partial, SectionMembers)
		roles = map[primitive.ObjectID]string{}
	}

	userByID := make(map[primitive.ObjectID]models.User, len(allUsers))
	for _, u := range allUsers {
		userByID[u.ID] = u
	}

	// Member details follow the project's member_ids order. Ids whose
	// user document has been deleted are dropped, not rendered empty.
	memberSet := make(map[primitive.ObjectID]bool, len(project.MemberIDs))
	for _, id := range project.MemberIDs {
		memberSet[id] = true
		u, ok := userByID[id]
		if !ok {
			continue
		}
		role, ok := roles[id]
		if !ok {
			role = models.RoleMember
		}
		d.Members = append(d.Members, MemberDetail{User: u, Role: role})
	}

	// allUsers is sorted by folded name, so the pool inherits the order.
	for _, u := range allUsers {
		if !memberSet[u.ID] {
			d.AvailableUsers = append(d.AvailableUsers, u)
		}
	}

	return d, nil
}

func loadRoles(ctx context.Context, db *mongo.Database, projectID primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	cur, err := db.Collection("members").Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	roles := make(map[primitive.ObjectID]string)
	for cur.Next(ctx) {
		var m models.Member
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		roles[m.UserID] = m.Role
	}
	return roles, cur.Err()
}

func loadTasks(ctx context.Context, db *mongo.Database, projectID primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "status", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := db.Collection("tasks").Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func loadUsers(ctx context.Context, db *mongo.Database) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := db.Collection("users").Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
