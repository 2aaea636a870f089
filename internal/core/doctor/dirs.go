package doctor

import (
	"context"
	"fmt"
	"os"
)

// DirsCheck verifies that the data and order watch directories exist and
// are accessible. With autofix, missing directories are created.
type DirsCheck struct {
	dirs    map[string]string
	order   []string
	autofix bool
}

// NewDirsCheck creates an empty directory check.
func NewDirsCheck(autofix bool) *DirsCheck {
	return &DirsCheck{dirs: make(map[string]string), autofix: autofix}
}

// Add registers a directory to check.
func (c *DirsCheck) Add(label, path string) *DirsCheck {
	if _, ok := c.dirs[label]; !ok {
		c.order = append(c.order, label)
	}
	c.dirs[label] = path
	return c
}

func (c *DirsCheck) Name() string {
	return "Directories"
}

func (c *DirsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	for _, label := range c.order {
		dir := c.dirs[label]
		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			if c.autofix {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					result.Items = append(result.Items, CheckItem{
						Label:  label,
						Status: StatusFail,
						Detail: fmt.Sprintf("create %s: %v", dir, err),
					})
					continue
				}
				result.Items = append(result.Items, CheckItem{
					Label:  label,
					Status: StatusPass,
					Detail: "created " + dir,
				})
				continue
			}
			result.Items = append(result.Items, CheckItem{
				Label:   label,
				Status:  StatusWarn,
				Detail:  dir + " does not exist",
				Fixable: true,
			})
		case err != nil:
			result.Items = append(result.Items, CheckItem{
				Label:  label,
				Status: StatusFail,
				Detail: fmt.Sprintf("inaccessible: %v", err),
			})
		case !info.IsDir():
			result.Items = append(result.Items, CheckItem{
				Label:  label,
				Status: StatusFail,
				Detail: dir + " is not a directory",
			})
		default:
			result.Items = append(result.Items, CheckItem{
				Label:  label,
				Status: StatusPass,
				Detail: dir,
			})
		}
	}

	return result
}
