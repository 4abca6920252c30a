// Package cli is the corral command line.
//
// "corral serve" runs the device daemon. Every other subcommand is a thin
// client of the daemon's control API:
//
//	corral author ./clip.mp4 --mime video/mp4   # share a local file
//	corral ingest meta.json                      # accept metadata from a peer
//	corral start <object-id>                     # begin fetching in the background
//	corral fetch <object-id>                     # fetch and print the local path
//	corral watch <object-id>                     # follow a running fetch
//	corral status                                # table of live fetches
//	corral cancel <object-id>
//	corral upload <object-id> --to email:<hash>  # push to the relay for recipients
//	corral delete <object-id>
//	corral mint-token                            # print a control API token
//
// Configuration follows the usual layering: defaults, then the file named by
// -c/--config, then flags.
package cli
