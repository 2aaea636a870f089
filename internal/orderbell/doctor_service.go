package orderbell

import (
	"context"
	"fmt"

	"github.com/colonyops/orderbell/internal/core/config"
	"github.com/colonyops/orderbell/internal/core/doctor"
	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/data/db"
	"github.com/colonyops/orderbell/internal/integration/desktop"
)

// DoctorService runs health checks on the orderbell setup.
type DoctorService struct {
	config     *config.Config
	db         *db.DB
	history    notify.Store
	desktop    *desktop.Sink
	desktopErr error
	gate       *notify.Gate
}

// NewDoctorService creates a new DoctorService. desktopErr is the reason the
// desktop sink could not be connected, if any.
func NewDoctorService(cfg *config.Config, database *db.DB, history notify.Store, sink *desktop.Sink, desktopErr error, gate *notify.Gate) *DoctorService {
	return &DoctorService{
		config:     cfg,
		db:         database,
		history:    history,
		desktop:    sink,
		desktopErr: desktopErr,
		gate:       gate,
	}
}

// RunChecks executes all doctor checks and returns results.
func (d *DoctorService) RunChecks(ctx context.Context, configPath string, autofix bool) []doctor.Result {
	var pinger doctor.Pinger
	if d.db != nil {
		pinger = d.db.Conn()
	}

	checks := []doctor.Check{
		doctor.NewConfigCheck(d.config, configPath),
		doctor.NewDirsCheck(autofix).
			Add("data_dir", d.config.DataDir).
			Add("orders.watch_dir", d.config.Orders.WatchDir),
		doctor.NewToolsCheck(d.config.Audio.Player, d.config.Audio.Enabled),
		doctor.NewDesktopCheck(d.config.Desktop.Enabled, d.daemonInfo, d.gate),
		doctor.NewStorageCheck(db.Path(d.config.DataDir), pinger, d.history),
	}
	return doctor.RunAll(ctx, checks)
}

func (d *DoctorService) daemonInfo(ctx context.Context) (string, error) {
	if d.desktop == nil {
		if d.desktopErr != nil {
			return "", d.desktopErr
		}
		return "", notify.ErrUnsupported
	}
	info, err := d.desktop.ServerInformation(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s (%s)", info.Name, info.Version, info.Vendor), nil
}
