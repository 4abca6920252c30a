package cli

import (
	"fmt"

	pb "github.com/dmitrijs2005/corral/internal/proto"
	"github.com/spf13/cobra"
)

func (r *runner) startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <object-id>",
		Short: "Start fetching an object in the background",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withAPI(func(api API) error {
				task, err := api.Start(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(r.out, "task %s: %s\n", task.GetTaskId(), describe(task))
				return err
			})
		},
	}
}

func (r *runner) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <object-id>",
		Short: "Fetch an object and print its local path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withAPI(func(api API) error {
				path, channel, err := api.Fetch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(r.out, "%s\t%s\n", path, channel)
				return err
			})
		},
	}
}

func (r *runner) cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <object-id>",
		Short: "Cancel the running fetch of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withAPI(func(api API) error {
				return api.Cancel(cmd.Context(), args[0])
			})
		},
	}
}

func (r *runner) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show live fetches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withAPI(func(api API) error {
				tasks, err := api.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(tasks) == 0 {
					_, err = fmt.Fprintln(r.out, "no active fetches")
					return err
				}
				_, err = fmt.Fprintln(r.out, renderTasks(tasks, terminalWidth()))
				return err
			})
		},
	}
}

func (r *runner) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <object-id>",
		Short: "Follow the progress of a running fetch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withAPI(func(api API) error {
				return api.Watch(cmd.Context(), args[0], func(ev *pb.TaskEvent) {
					fmt.Fprintln(r.out, describe(ev))
				})
			})
		},
	}
}
