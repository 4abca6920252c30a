package cli

import (
	"context"
	"io"

	"github.com/dmitrijs2005/corral/internal/client/config"
	"github.com/dmitrijs2005/corral/internal/client/control"
	"github.com/dmitrijs2005/corral/internal/client/models"
	pb "github.com/dmitrijs2005/corral/internal/proto"
	"github.com/spf13/cobra"
)

// API is the part of the control client the commands use.
type API interface {
	Start(ctx context.Context, objectID string) (*pb.TaskEvent, error)
	Fetch(ctx context.Context, objectID string) (path, channel string, err error)
	Cancel(ctx context.Context, objectID string) error
	List(ctx context.Context) ([]*pb.TaskEvent, error)
	Watch(ctx context.Context, objectID string, fn func(*pb.TaskEvent)) error
	Author(ctx context.Context, path, mime string) (*models.Object, error)
	Ingest(ctx context.Context, obj *models.Object) error
	Upload(ctx context.Context, objectID string, recipients []string) (*models.Object, error)
	Delete(ctx context.Context, objectID string) error
	Close() error
}

// cliSubject names the CLI in the control tokens it mints.
const cliSubject = "corral-cli"

// dial is a test seam.
var dial = func(c *config.Config) (API, error) {
	return control.NewClient(c.ControlAddr, c.ControlSecret, cliSubject, c.ControlTokenValidity)
}

type runner struct {
	cfg *config.Config
	out io.Writer
}

// withAPI opens a control client for the duration of fn.
func (r *runner) withAPI(fn func(api API) error) error {
	api, err := dial(r.cfg)
	if err != nil {
		return err
	}
	defer api.Close()
	return fn(api)
}

// NewRootCmd builds the command tree over cfg; flags parsed by cobra write
// straight into cfg.
func NewRootCmd(cfg *config.Config, out io.Writer) *cobra.Command {
	r := &runner{cfg: cfg, out: out}

	root := &cobra.Command{
		Use:           "corral",
		Short:         "Share media between devices over LAN, Bluetooth or an encrypted relay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(
		r.serveCmd(),
		r.mintTokenCmd(),
		r.startCmd(),
		r.fetchCmd(),
		r.cancelCmd(),
		r.statusCmd(),
		r.watchCmd(),
		r.authorCmd(),
		r.ingestCmd(),
		r.uploadCmd(),
		r.deleteCmd(),
	)
	return root
}

// Execute loads the config named in args and runs the matching command.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	root := NewRootCmd(cfg, out)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
