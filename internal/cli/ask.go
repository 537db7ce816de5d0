package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"faqrag/internal/domain"
	"faqrag/internal/rag"
)

var askTopK int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the command line",
	Long: `Index the FAQ corpus and answer a question. With no argument an
interactive prompt starts; type 'quit' to leave it.

Examples:
  faqrag ask "How do I reset my password?"
  faqrag ask --top-k 8 "What payment methods are supported?"
  faqrag ask`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := buildService(ctx, cfg, defaultProgressEnabled())
	if err != nil {
		return err
	}

	if len(args) > 0 {
		result, err := svc.Answer(ctx, strings.Join(args, " "), askTopK)
		if err != nil {
			return err
		}
		printAnswer(result)
		return nil
	}
	return askLoop(ctx, svc)
}

func askLoop(ctx context.Context, svc *rag.Service) error {
	fmt.Println()
	fmt.Println(replHeaderStyle.Render("=== FAQ RAG CLI ==="))
	fmt.Println("Type 'quit' to exit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Question: ")
		if !scanner.Scan() {
			break
		}

		q := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(q) {
		case "quit", "exit", "q":
			return nil
		case "":
			continue
		}

		result, err := svc.Answer(ctx, q, askTopK)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Printf("Error: %v\n\n", err)
			continue
		}
		printAnswer(result)
	}
	return scanner.Err()
}

func printAnswer(result domain.AnswerResult) {
	fmt.Printf("\n%s %s\n", answerLabel.Render("Answer:"), result.Answer)
	fmt.Printf("%s %s\n\n", sourcesLabel.Render("Sources:"), strings.Join(result.Sources, ", "))
}
