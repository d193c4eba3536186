package dynamodb

import (
	"calendar-backend/domain/keys"
	"calendar-backend/domain/model"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// Entity type markers stored on each item
const (
	entityEvent      = "EVENT"
	entityProject    = "PROJECT"
	entityMembership = "MEMBERSHIP"
	entityTask       = "TASK"
	entityRelation   = "RELATION"
)

// eventItem is the persisted form of an event. GSI2SK mirrors StartDate so
// date-range reads are a key condition rather than a filter.
type eventItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	GSI2PK     string `dynamodbav:"GSI2PK"`
	GSI2SK     string `dynamodbav:"GSI2SK"`
	EntityType string `dynamodbav:"entityType"`

	UserID      string `dynamodbav:"userId"`
	EventID     string `dynamodbav:"eventId"`
	Title       string `dynamodbav:"title"`
	Description string `dynamodbav:"description"`
	StartDate   string `dynamodbav:"startDate"`
	EndDate     string `dynamodbav:"endDate"`
	WeekOfYear  string `dynamodbav:"weekOfYear"`
	AllDay      bool   `dynamodbav:"allDay"`
	Color       string `dynamodbav:"color"`
	CreatedAt   string `dynamodbav:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt"`

	ProjectID          string `dynamodbav:"projectId,omitempty"`
	ProjectName        string `dynamodbav:"projectName,omitempty"`
	ProjectDescription string `dynamodbav:"projectDescription,omitempty"`
	OwnerID            string `dynamodbav:"ownerId,omitempty"`
}

func newEventItem(e *model.Event) eventItem {
	return eventItem{
		PK:         keys.Project(e.ProjectID),
		SK:         keys.Event(e.EventID),
		GSI1PK:     keys.User(e.UserID),
		GSI1SK:     keys.Event(e.EventID),
		GSI2PK:     keys.User(e.UserID),
		GSI2SK:     e.StartDate,
		EntityType: entityEvent,

		UserID:      e.UserID,
		EventID:     e.EventID,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		WeekOfYear:  e.WeekOfYear,
		AllDay:      e.AllDay,
		Color:       e.Color,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,

		ProjectID:          e.ProjectID,
		ProjectName:        e.ProjectName,
		ProjectDescription: e.ProjectDescription,
		OwnerID:            e.OwnerID,
	}
}

// toEvent rebuilds a model event. Items written by older clients may lack
// the denormalized id attributes, so missing ids fall back to the keys.
func (i eventItem) toEvent() model.Event {
	e := model.Event{
		UserID:      i.UserID,
		EventID:     i.EventID,
		Title:       i.Title,
		Description: i.Description,
		StartDate:   i.StartDate,
		EndDate:     i.EndDate,
		WeekOfYear:  i.WeekOfYear,
		AllDay:      i.AllDay,
		Color:       i.Color,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,

		ProjectID:          i.ProjectID,
		ProjectName:        i.ProjectName,
		ProjectDescription: i.ProjectDescription,
		OwnerID:            i.OwnerID,
	}
	if e.EventID == "" {
		if id, err := keys.EventID(i.SK); err == nil {
			e.EventID = id
		}
	}
	if e.ProjectID == "" {
		if id, err := keys.ProjectID(i.PK); err == nil {
			e.ProjectID = id
		}
	}
	if e.UserID == "" {
		if id, err := keys.UserID(i.GSI1PK); err == nil {
			e.UserID = id
		}
	}
	if e.Color == "" {
		e.Color = model.DefaultEventColor
	}
	return e
}

// projectItem is the persisted form of a project. The user index lists a
// user's owned projects.
type projectItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	EntityType string `dynamodbav:"entityType"`

	ID          string `dynamodbav:"id"`
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description"`
	Color       string `dynamodbav:"color"`
	OwnerID     string `dynamodbav:"ownerId"`
	Status      string `dynamodbav:"status"`
	CreatedAt   string `dynamodbav:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt"`
}

func newProjectItem(p *model.Project) projectItem {
	return projectItem{
		PK:         keys.Project(p.ID),
		SK:         keys.Project(p.ID),
		GSI1PK:     keys.User(p.OwnerID),
		GSI1SK:     keys.Project(p.ID),
		EntityType: entityProject,

		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		OwnerID:     p.OwnerID,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (i projectItem) toProject() model.Project {
	p := model.Project{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Color:       i.Color,
		OwnerID:     i.OwnerID,
		Status:      i.Status,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if p.ID == "" {
		if id, err := keys.ProjectID(i.PK); err == nil {
			p.ID = id
		}
	}
	if p.OwnerID == "" {
		if id, err := keys.UserID(i.GSI1PK); err == nil {
			p.OwnerID = id
		}
	}
	if p.Color == "" {
		p.Color = model.DefaultProjectColor
	}
	if p.Status == "" {
		p.Status = model.ProjectStatusActive
	}
	return p
}

// membershipItem grants a user a role on a project. The user index answers
// "which projects is this user a member of".
type membershipItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	EntityType string `dynamodbav:"entityType"`

	Role     string `dynamodbav:"role"`
	JoinedAt string `dynamodbav:"joinedAt"`
}

func newMembershipItem(m *model.Membership) membershipItem {
	return membershipItem{
		PK:         keys.Project(m.ProjectID),
		SK:         keys.Member(m.UserID),
		GSI1PK:     keys.User(m.UserID),
		GSI1SK:     keys.Project(m.ProjectID),
		EntityType: entityMembership,

		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
}

func (i membershipItem) toMembership() model.Membership {
	m := model.Membership{
		Role:     i.Role,
		JoinedAt: i.JoinedAt,
	}
	if id, err := keys.ProjectID(i.PK); err == nil {
		m.ProjectID = id
	}
	if id, err := keys.MemberID(i.SK); err == nil {
		m.UserID = id
	}
	return m
}

// taskItem is the canonical task record, keyed by task id alone so a task
// can be addressed without knowing its project.
type taskItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	EntityType string `dynamodbav:"entityType"`

	ID          string `dynamodbav:"id"`
	Title       string `dynamodbav:"title"`
	Description string `dynamodbav:"description"`
	Status      string `dynamodbav:"status"`
	Priority    string `dynamodbav:"priority"`
	ProjectID   string `dynamodbav:"projectId"`
	AssigneeID  string `dynamodbav:"assigneeId,omitempty"`
	DueDate     string `dynamodbav:"dueDate,omitempty"`
	CreatedAt   string `dynamodbav:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt"`
}

func newTaskItem(t *model.Task) taskItem {
	return taskItem{
		PK:         keys.Task(t.ID),
		SK:         keys.Task(t.ID),
		GSI1PK:     keys.Task(t.ID),
		GSI1SK:     keys.Task(t.ID),
		EntityType: entityTask,

		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		ProjectID:   t.ProjectID,
		AssigneeID:  t.AssigneeID,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (i taskItem) toTask() model.Task {
	t := model.Task{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Status:      i.Status,
		Priority:    i.Priority,
		ProjectID:   i.ProjectID,
		AssigneeID:  i.AssigneeID,
		DueDate:     i.DueDate,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if t.ID == "" {
		if id, err := keys.TaskID(i.SK); err == nil {
			t.ID = id
		}
	}
	if t.Status == "" {
		t.Status = model.TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.TaskPriorityMedium
	}
	return t
}

// relationItem links a task into a project or user partition. It carries no
// payload of its own; readers resolve the SK to the canonical task record.
type relationItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"entityType"`
	TaskID     string `dynamodbav:"taskId"`
}

func newProjectTaskRelation(projectID, taskID string) relationItem {
	return relationItem{
		PK:         keys.Project(projectID),
		SK:         keys.Task(taskID),
		EntityType: entityRelation,
		TaskID:     taskID,
	}
}

func newUserTaskRelation(userID, taskID string) relationItem {
	return relationItem{
		PK:         keys.User(userID),
		SK:         keys.Task(taskID),
		EntityType: entityRelation,
		TaskID:     taskID,
	}
}

// taskIDOf recovers the task id a relation item points at
func (i relationItem) taskIDOf() (string, error) {
	if i.TaskID != "" {
		return i.TaskID, nil
	}
	return keys.TaskID(i.SK)
}

func marshalItem(v interface{}) (Item, error) {
	return attributevalue.MarshalMap(v)
}

func unmarshalItem(item Item, v interface{}) error {
	return attributevalue.UnmarshalMap(item, v)
}
