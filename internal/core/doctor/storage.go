package doctor

import (
	"context"
	"fmt"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Counter reports how many notifications are in history.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// StorageCheck verifies the database answers and reports history size.
type StorageCheck struct {
	path    string
	db      Pinger
	history Counter
}

func NewStorageCheck(path string, db Pinger, history Counter) *StorageCheck {
	return &StorageCheck{path: path, db: db, history: history}
}

func (c *StorageCheck) Name() string {
	return "Storage"
}

func (c *StorageCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.db == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "database",
			Status: StatusFail,
			Detail: "not open",
		})
		return result
	}

	if err := c.db.PingContext(ctx); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "database",
			Status: StatusFail,
			Detail: fmt.Sprintf("%s: %v", c.path, err),
		})
		return result
	}
	result.Items = append(result.Items, CheckItem{
		Label:  "database",
		Status: StatusPass,
		Detail: c.path,
	})

	if c.history != nil {
		n, err := c.history.Count(ctx)
		if err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  "history",
				Status: StatusFail,
				Detail: err.Error(),
			})
		} else {
			result.Items = append(result.Items, CheckItem{
				Label:  "history",
				Status: StatusPass,
				Detail: fmt.Sprintf("%d notifications", n),
			})
		}
	}

	return result
}
