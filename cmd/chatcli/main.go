// Command chatcli runs a qualification conversation with Sofia in the
// terminal using the same wiring as the API server.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/wolfman30/inmobiliaria-premium/cmd/mainconfig"
	"github.com/wolfman30/inmobiliaria-premium/internal/app/bootstrap"
	appconfig "github.com/wolfman30/inmobiliaria-premium/internal/config"
	"github.com/wolfman30/inmobiliaria-premium/internal/conversation"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New("warn")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loadAWS := func(ctx context.Context) (aws.Config, error) {
		return mainconfig.LoadAWSConfig(ctx, cfg)
	}
	llm, err := bootstrap.BuildLLMClient(ctx, cfg, loadAWS, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "llm: %v\n", err)
		os.Exit(1)
	}
	leadStore, err := bootstrap.BuildLeadStore(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lead store: %v\n", err)
		os.Exit(1)
	}
	defer leadStore.Close()

	svc, err := bootstrap.BuildConversationService(cfg, bootstrap.ConversationDeps{
		LLM:      llm,
		Sessions: conversation.NewMemorySessionStore(cfg.ChatSessionTTL),
		Leads:    leadStore.Repo,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat: %v\n", err)
		os.Exit(1)
	}

	if err := chat(ctx, svc, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "chat: %v\n", err)
		os.Exit(1)
	}
}

// chat drives one session from in to out until the lead is qualified and a
// slot is chosen, or input ends.
func chat(ctx context.Context, svc *conversation.Service, in io.Reader, out io.Writer) error {
	session, err := svc.Start(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Sofia: %s\n", session.Messages[0].Text)

	scanner := bufio.NewScanner(in)
	var slots []string
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if len(slots) > 0 {
			res, err := svc.SelectSlot(ctx, session.ID, pickSlot(text, slots))
			if errors.Is(err, conversation.ErrUnknownSlot) {
				fmt.Fprintf(out, "Elige una opción: %s\n", strings.Join(slots, ", "))
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Sofia: %s\n", res.Reply)
			return nil
		}

		res, err := svc.Send(ctx, session.ID, text)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Sofia: %s\n", res.Reply)
		if !res.Complete {
			continue
		}
		fmt.Fprintf(out, "[lead #%d registrado como %s]\n", res.LeadID, res.Classification)
		if len(res.Slots) == 0 {
			return nil
		}
		slots = res.Slots
		for i, slot := range slots {
			fmt.Fprintf(out, "  %d) %s\n", i+1, slot)
		}
	}
}

// pickSlot accepts either the slot label or its 1-based position.
func pickSlot(text string, slots []string) string {
	for i, slot := range slots {
		if text == fmt.Sprint(i+1) {
			return slot
		}
	}
	return text
}
