package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/services/session"
)

// send <peer> <message>: encrypt and send a message to <peer>.
// send --to a,b <message>: one envelope per recipient.
func sendCmd() *cobra.Command {
	var (
		kind string
		to   []string
	)
	cmd := &cobra.Command{
		Use:   "send [<peer>] <message>...",
		Short: "Encrypt and send a message to one or more peers",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(to) > 0 {
				return cobra.MinimumNArgs(1)(cmd, args)
			}
			return cobra.MinimumNArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			mt := domain.MessageType(kind)
			if len(to) == 0 {
				env, err := wire.Messages.Send(cmd.Context(), domain.UserID(args[0]), strings.Join(args[1:], " "), mt, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "sent %s\n", env.ID)
				return nil
			}

			peers := make([]domain.UserID, len(to))
			for i, p := range to {
				peers[i] = domain.UserID(strings.TrimSpace(p))
			}
			results, err := wire.Messages.SendMany(cmd.Context(), peers, strings.Join(args, " "), mt, nil)
			if err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(out, "%-20s failed: %v\n", r.Peer, r.Err)
					continue
				}
				fmt.Fprintf(out, "%-20s sent %s\n", r.Peer, r.Envelope.ID)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d recipients failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "type", string(domain.MessageText), "message type: text, file or image")
	cmd.Flags().StringSliceVar(&to, "to", nil, "comma-separated recipients; all arguments form the message")
	return cmd
}

// open <peer>: decrypt a page of the chat with <peer> and mark it read.
func openCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "open <peer>",
		Short: "Show the conversation with a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, shown, err := wire.Messages.Open(cmd.Context(), domain.UserID(args[0]), limit, offset)
			out := cmd.OutOrStdout()
			for _, m := range shown {
				printMessage(out, m)
			}
			if page.HasMore {
				fmt.Fprintf(out, "-- %d of %d shown, use --offset %d for older messages --\n",
					len(page.Messages), page.Total, offset+len(page.Messages))
			}
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", session.DefaultPageSize, "messages per page")
	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many newest messages")
	return cmd
}

func printMessage(w io.Writer, m domain.DisplayMessage) {
	from := string(m.Envelope.SenderID)
	if m.Outgoing {
		from = "me"
	}
	mark := " "
	if !m.Outgoing && !m.Envelope.IsRead {
		mark = "*"
	}
	fmt.Fprintf(w, "%s %s [%s] %s", mark, m.Envelope.CreatedAt.Local().Format("2006-01-02 15:04"), from, m.Plaintext)
	if m.Envelope.MessageType != "" && m.Envelope.MessageType != domain.MessageText {
		fmt.Fprintf(w, " (%s)", m.Envelope.MessageType)
	}
	if m.Undecryptable && m.Reason != "" {
		fmt.Fprintf(w, " (%s)", m.Reason)
	}
	fmt.Fprintf(w, "  #%s\n", m.Envelope.ID)
}

func chatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List your chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chats, err := wire.Sessions.Chats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(chats) == 0 {
				fmt.Fprintln(out, "no chats yet")
				return nil
			}
			me := wire.Sessions.Me()
			for _, c := range chats {
				peer, ok := session.PeerOf(c.ChatID, me)
				if !ok {
					peer = domain.UserID(c.ChatID)
				}
				fmt.Fprintf(out, "%-20s %3d messages  %3d unread  last %s\n",
					peer, c.MessageCount, c.UnreadCount,
					c.LastMessage.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <peer>",
		Short: "Mark the chat with a peer as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID := session.DeriveChatID(wire.Sessions.Me(), domain.UserID(args[0]))
			n, err := wire.Sessions.MarkRead(cmd.Context(), chatID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d messages marked read\n", n)
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <message-id>",
		Short: "Delete a message you sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Sessions.Remove(cmd.Context(), domain.MessageID(args[0])); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}

func unreadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unread [peer]",
		Short: "Print the number of unread messages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				n, err := wire.Sessions.TotalUnread(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			}
			chatID := session.DeriveChatID(wire.Sessions.Me(), domain.UserID(args[0]))
			chats, err := wire.Sessions.Chats(cmd.Context())
			if err != nil {
				return err
			}
			n := 0
			for _, c := range chats {
				if c.ChatID == chatID {
					n = c.UnreadCount
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}
