package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/cuemby/notesd/internal/rpc"
	"github.com/cuemby/notesd/internal/rpc/wire"
	"github.com/spf13/cobra"
)

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("server", "127.0.0.1:7847", "notesd gRPC address")
	cmd.Flags().Uint32("tag", 0, "Note tag (uint32)")
}

func dialFromFlags(cmd *cobra.Command) (*rpc.Client, error) {
	addr, _ := cmd.Flags().GetString("server")
	return rpc.Dial(addr, nil)
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a note to the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetUint32("tag")
		details, _ := cmd.Flags().GetString("details")
		if details == "" {
			return usageErrorf("--details is required")
		}

		c, err := dialFromFlags(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		header := make([]byte, 4)
		binary.BigEndian.PutUint32(header, tag)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		id, err := c.SendNote(ctx, tag, header, []byte(details))
		if err != nil {
			return fmt.Errorf("send failed: %w", err)
		}
		fmt.Printf("sent: %x\n", id)
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a page of notes for a tag",
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetUint32("tag")
		limit, _ := cmd.Flags().GetUint32("limit")

		c, err := dialFromFlags(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		resp, err := c.FetchNotes(ctx, tag, nil, limit)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		for _, n := range resp.Notes {
			fmt.Printf("%x\t%d\t%s\n", n.ID, n.CreatedAtMs, n.Details)
		}
		return nil
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Stream live notes for a tag",
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetUint32("tag")
		idleSecs, _ := cmd.Flags().GetInt("idle-timeout-secs")

		c, err := dialFromFlags(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		return c.StreamNotes(context.Background(), tag, nil, time.Duration(idleSecs)*time.Second, func(n *wire.Note) {
			fmt.Printf("%x\t%d\t%s\n", n.ID, n.CreatedAtMs, n.Details)
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print server stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dialFromFlags(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s, err := c.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats failed: %w", err)
		}
		fmt.Fprintf(os.Stdout, "notes=%d tags=%d subscriptions=%d overflow=%d\n",
			s.TotalNotes, s.UniqueTags, s.ActiveSubscriptions, s.OverflowCount)
		return nil
	},
}

func init() {
	addTargetFlags(sendCmd)
	sendCmd.Flags().String("details", "", "Note body (required)")

	addTargetFlags(fetchCmd)
	fetchCmd.Flags().Uint32("limit", 0, "Max notes to return (0 = server default)")

	addTargetFlags(streamCmd)
	streamCmd.Flags().Int("idle-timeout-secs", 300, "Seconds of silence before the stream ends")

	addTargetFlags(statsCmd)
}
