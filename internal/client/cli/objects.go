package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/spf13/cobra"
)

func (r *runner) printJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *runner) authorCmd() *cobra.Command {
	var mime string
	cmd := &cobra.Command{
		Use:   "author <path>",
		Short: "Share a local file and print the metadata to send to peers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withAPI(func(api API) error {
				obj, err := api.Author(cmd.Context(), args[0], mime)
				if err != nil {
					return err
				}
				return r.printJSON(obj)
			})
		},
	}
	cmd.Flags().StringVarP(&mime, "mime", "m", "", "content type of the file")
	return cmd
}

func (r *runner) ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <metadata.json|->",
		Short: "Store object metadata received from a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			var obj models.Object
			if err := json.NewDecoder(in).Decode(&obj); err != nil {
				return fmt.Errorf("decode metadata: %w", err)
			}
			return r.withAPI(func(api API) error {
				if err := api.Ingest(cmd.Context(), &obj); err != nil {
					return err
				}
				_, err := fmt.Fprintln(r.out, obj.ID)
				return err
			})
		},
	}
}

func (r *runner) uploadCmd() *cobra.Command {
	var recipients []string
	cmd := &cobra.Command{
		Use:   "upload <object-id>",
		Short: "Encrypt an authored object to the relay for recipients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withAPI(func(api API) error {
				obj, err := api.Upload(cmd.Context(), args[0], recipients)
				if err != nil {
					return err
				}
				return r.printJSON(obj)
			})
		},
	}
	cmd.Flags().StringSliceVar(&recipients, "to", nil, "recipient identity descriptors (type:hash)")
	return cmd
}

func (r *runner) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <object-id>",
		Short: "Delete an object; its origin token stops working",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withAPI(func(api API) error {
				return api.Delete(cmd.Context(), args[0])
			})
		},
	}
}
