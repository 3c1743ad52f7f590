// Command listctl manages channel bindings through the admin gRPC service.
//
//	listctl [--address host:port] list
//	listctl enable <guild-id> <channel-id> <channel-name>
//	listctl disable <guild-id> <channel-id>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	admin "discord-lists/grpc"
	"discord-lists/models"

	flag "github.com/spf13/pflag"
)

func main() {
	address := flag.StringP("address", "a", "localhost:50051", "admin gRPC server address")
	timeout := flag.DurationP("timeout", "t", 10*time.Second, "per-request timeout")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] list | enable <guild-id> <channel-id> <channel-name> | disable <guild-id> <channel-id>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	client, err := admin.NewClient(*address, *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	if err := run(context.Background(), client, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid arguments")

// channelAdmin is implemented by *admin.Client.
type channelAdmin interface {
	EnableChannel(ctx context.Context, guildID, channelID, channelName string) (models.EnableResult, error)
	DisableChannel(ctx context.Context, guildID, channelID string) (models.DisableResult, error)
	ListEnabledChannels(ctx context.Context) ([]models.EnabledChannel, error)
}

func run(ctx context.Context, client channelAdmin, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "list":
		channels, err := client.ListEnabledChannels(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "GUILD\tCHANNEL\tNAME\tLINK")
		for _, c := range channels {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.GuildID, c.ChannelID, c.ChannelName, c.MemexSocialLink)
		}
		return w.Flush()
	case "enable":
		if len(args) != 4 {
			return errUsage
		}
		res, err := client.EnableChannel(ctx, args[1], args[2], args[3])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "changed=%t link=%s\n", res.Changed, res.MemexSocialLink)
		return nil
	case "disable":
		if len(args) != 3 {
			return errUsage
		}
		res, err := client.DisableChannel(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "changed=%t\n", res.Changed)
		return nil
	}
	return errUsage
}
