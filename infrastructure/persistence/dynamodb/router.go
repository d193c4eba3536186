package dynamodb

import (
	"calendar-backend/domain/keys"
	"calendar-backend/domain/model"
)

// Logical index names. The store maps them to the configured physical names.
const (
	IndexPrimary = ""     // the table itself
	IndexUser    = "GSI1" // USER#<id> partition, entity-key sort
	IndexDate    = "GSI2" // USER#<id> partition, startDate sort
)

// Attribute used by the week filter
const attrWeekOfYear = "weekOfYear"

// QuerySpec describes one access path against the table. Exactly one sort
// condition applies: a begins_with prefix, or a between range, or none.
type QuerySpec struct {
	Index          string
	Partition      string
	SortPrefix     string
	SortLow        string
	SortHigh       string
	Filters        map[string]string
	ConsistentRead bool
}

// RouteEventQuery picks the access path for an event read. Precedence:
//
//  1. projectId        -> primary table, strongly consistent
//  2. otherwise        -> user index
//  3. weekOfYear       -> equality filter on top of path 1 or 2
//  4. date range only  -> date index (no projectId, no weekOfYear)
//
// projectId combined with a date range keeps the project path and drops the
// dates: the narrower scope is assumed sufficient.
func RouteEventQuery(scope model.EventScope) QuerySpec {
	var spec QuerySpec
	if scope.ProjectID != "" {
		spec = QuerySpec{
			Index:          IndexPrimary,
			Partition:      keys.Project(scope.ProjectID),
			SortPrefix:     keys.EventPrefix,
			ConsistentRead: true,
		}
	} else {
		spec = QuerySpec{
			Index:      IndexUser,
			Partition:  keys.User(scope.UserID),
			SortPrefix: keys.EventPrefix,
		}
	}

	if scope.WeekOfYear != "" {
		spec.Filters = map[string]string{attrWeekOfYear: scope.WeekOfYear}
	} else if scope.StartDate != "" && scope.EndDate != "" && scope.ProjectID == "" {
		// startDate is the index sort key, so the range is a key
		// condition: ISO-8601 strings order lexicographically.
		spec = QuerySpec{
			Index:     IndexDate,
			Partition: keys.User(scope.UserID),
			SortLow:   scope.StartDate,
			SortHigh:  scope.EndDate,
		}
	}

	return spec
}

// RouteTaskQuery picks the access path for a task read. Project scope hits
// the project partition; user scope hits the assignee relation records in
// the user partition. Both return relation or task keys that the repository
// resolves to full task records.
func RouteTaskQuery(userID, projectID string) QuerySpec {
	if projectID != "" {
		return QuerySpec{
			Index:          IndexPrimary,
			Partition:      keys.Project(projectID),
			SortPrefix:     keys.TaskPrefix,
			ConsistentRead: true,
		}
	}
	return QuerySpec{
		Index:      IndexPrimary,
		Partition:  keys.User(userID),
		SortPrefix: keys.TaskPrefix,
	}
}
