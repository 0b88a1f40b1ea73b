package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/liquidhire/internal/interview"
	"github.com/spigell/liquidhire/internal/logger"
	"github.com/spigell/liquidhire/internal/resume"
	"go.uber.org/zap"
)

const (
	PromptAnswer = "Answer the question"
	PromptFinish = "Finish and get the score"
	PromptQuit   = "Quit without scoring"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a mock interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		practice(cmd)
	},
}

func init() {
	rootCmd.AddCommand(practiceCmd)

	practiceCmd.Flags().StringP("role", "r", "Software Engineer", "job role to interview for")
	practiceCmd.Flags().String("resume", "", "résumé file (PDF or plain text)")
}

func practice(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig(false)
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	role, _ := cmd.Flags().GetString("role")
	resumePath, _ := cmd.Flags().GetString("resume")

	resumeText, err := readResume(resumePath)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}

	svc := interview.NewService(newChain(ctx, config.AI, logger), logger.Named("interview"), config.AI.MaxLogLength)

	state := interview.State{
		ResumeText:    resumeText,
		JobRole:       role,
		CurrentAnswer: interview.StartSentinel,
	}

	for {
		reply := svc.Reply(ctx, state)
		fmt.Printf("\nInterviewer: %s\n\n", reply.NextQuestion)
		if reply.NextQuestion == interview.Unavailable {
			logger.Fatal("exiting", zap.String("reason", "no model answered"))
		}

		state.History = append(state.History, interview.HistoryItem{Role: "user", Content: answerText(state.CurrentAnswer)})
		state.History = append(state.History, interview.HistoryItem{Role: "model", Content: reply.NextQuestion})

		action, err := nextAction()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		switch action {
		case PromptQuit:
			return
		case PromptFinish:
			report := svc.Score(ctx, interview.EndRequest{History: state.History[1:], JobRole: role, ResumeText: resumeText})
			pretty, _ := json.MarshalIndent(report, "", "  ")
			fmt.Println(string(pretty))
			return
		}

		answer, err := (&promptui.Prompt{
			Label: "Your answer",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("answer must not be empty")
				}
				return nil
			},
		}).Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		state.CurrentAnswer = answer
	}
}

func nextAction() (string, error) {
	selector := promptui.Select{
		Label: "Next step",
		Items: []string{PromptAnswer, PromptFinish, PromptQuit},
	}
	_, action, err := selector.Run()
	return action, err
}

// answerText records the opener in history in place of the sentinel.
func answerText(answer string) string {
	if answer == interview.StartSentinel {
		return interview.Opener
	}
	return answer
}

func readResume(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return resume.ExtractText(data)
	}
	return strings.TrimSpace(string(data)), nil
}
