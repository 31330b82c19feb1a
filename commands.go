package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/wordgo/internal/database"
	"github.com/example/wordgo/internal/study"
	"github.com/example/wordgo/pkg/models"
)

func addStudyCommands(root *cobra.Command) {
	var learnerID, sectionID, wordID int64

	var limit int
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Show the next words to study in a section",
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := newService().StartSession(cmd.Context(), learnerID, sectionID, limit, time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(words) == 0 {
				fmt.Fprintln(out, "Nothing to study in this section.")
				return nil
			}
			for i, sw := range words {
				fmt.Fprintf(out, "%2d. [%s] %d %s - %s\n", i+1, sw.Tier, sw.Word.ID, sw.Word.Word, sw.Word.Translation)
			}
			return nil
		},
	}
	sessionCmd.Flags().Int64Var(&learnerID, "learner", 0, "learner ID")
	sessionCmd.Flags().Int64Var(&sectionID, "section", 0, "section ID")
	sessionCmd.Flags().IntVar(&limit, "limit", 0, "session size (defaults to the learner's setting)")
	_ = sessionCmd.MarkFlagRequired("learner")
	_ = sessionCmd.MarkFlagRequired("section")

	var answer study.Answer
	answerCmd := &cobra.Command{
		Use:   "answer",
		Short: "Record an answer for a word",
		RunE: func(cmd *cobra.Command, args []string) error {
			answer.LearnerID = learnerID
			answer.WordID = wordID
			res, err := newService().RecordAnswer(cmd.Context(), answer, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "quality %d, next review %s (every %d days), learned: %t\n",
				res.Quality, res.State.NextReviewDate.Local().Format("2006-01-02 15:04"), res.State.Interval, res.State.IsLearned)
			return nil
		},
	}
	answerCmd.Flags().Int64Var(&learnerID, "learner", 0, "learner ID")
	answerCmd.Flags().Int64Var(&wordID, "word", 0, "word ID")
	answerCmd.Flags().BoolVar(&answer.IsCorrect, "correct", false, "the answer was correct")
	answerCmd.Flags().Int64Var(&answer.ResponseTimeMs, "ms", 0, "response time in milliseconds")
	answerCmd.Flags().IntVar(&answer.Attempts, "attempts", 1, "tries for this word in the current session")
	_ = answerCmd.MarkFlagRequired("learner")
	_ = answerCmd.MarkFlagRequired("word")

	progressCmd := &cobra.Command{
		Use:   "progress",
		Short: "Show progress through a section",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newService().SectionProgress(cmd.Context(), learnerID, sectionID, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d learned (%.0f%%), %d in progress, %d new, %d due, complete: %t\n",
				p.Learned, p.Total, p.CompletionPercentage, p.InProgress, p.New, p.Due, p.Complete)
			return nil
		},
	}
	progressCmd.Flags().Int64Var(&learnerID, "learner", 0, "learner ID")
	progressCmd.Flags().Int64Var(&sectionID, "section", 0, "section ID")
	_ = progressCmd.MarkFlagRequired("learner")
	_ = progressCmd.MarkFlagRequired("section")

	var undo bool
	learnedCmd := &cobra.Command{
		Use:   "learned",
		Short: "Mark a word as already known",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := newService().MarkLearned(cmd.Context(), learnerID, wordID, !undo, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "word %d learned: %t\n", wordID, state.IsLearned)
			return nil
		},
	}
	learnedCmd.Flags().Int64Var(&learnerID, "learner", 0, "learner ID")
	learnedCmd.Flags().Int64Var(&wordID, "word", 0, "word ID")
	learnedCmd.Flags().BoolVar(&undo, "undo", false, "remove the mark")
	_ = learnedCmd.MarkFlagRequired("learner")
	_ = learnedCmd.MarkFlagRequired("word")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show a learner's answers for a word",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := database.NewWordRepository(db).GetByID(cmd.Context(), wordID); err != nil {
				return fmt.Errorf("word %d: %w", wordID, err)
			}
			records, err := database.NewReviewRepository(db).GetByUserAndWord(cmd.Context(), learnerID, wordID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No answers recorded.")
				return nil
			}
			for _, r := range records {
				fmt.Fprintf(out, "%s\tquality %d\tcorrect %t\t%d ms\tattempt %d\n",
					r.ReviewedAt.Local().Format("2006-01-02 15:04"), r.Quality, r.IsCorrect, r.ResponseTimeMs, r.Attempts)
			}
			return nil
		},
	}
	historyCmd.Flags().Int64Var(&learnerID, "learner", 0, "learner ID")
	historyCmd.Flags().Int64Var(&wordID, "word", 0, "word ID")
	_ = historyCmd.MarkFlagRequired("learner")
	_ = historyCmd.MarkFlagRequired("word")

	remindCmd := &cobra.Command{
		Use:   "remind",
		Short: "Send a due-review reminder to one learner now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newScheduler().RunManualCheck(cmd.Context(), learnerID, time.Now())
		},
	}
	remindCmd.Flags().Int64Var(&learnerID, "learner", 0, "learner ID")
	_ = remindCmd.MarkFlagRequired("learner")

	root.AddCommand(sessionCmd, answerCmd, progressCmd, learnedCmd, historyCmd, remindCmd)
}

func addContentCommands(root *cobra.Command) {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add learners, sections and words",
	}

	var learner models.Learner
	learnerCmd := &cobra.Command{
		Use:   "learner",
		Short: "Add a learner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.NewLearnerRepository(db).Create(cmd.Context(), &learner); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "learner %d created\n", learner.ID)
			return nil
		},
	}
	learnerCmd.Flags().StringVar(&learner.Username, "name", "", "username")
	learnerCmd.Flags().IntVar(&learner.WordsPerSession, "session-size", 10, "words per session")
	learnerCmd.Flags().BoolVar(&learner.NotificationEnabled, "notify", true, "send due-review reminders")
	learnerCmd.Flags().IntVar(&learner.NotificationHour, "notify-hour", 9, "hour of day for reminders")
	_ = learnerCmd.MarkFlagRequired("name")

	var section models.Section
	sectionCmd := &cobra.Command{
		Use:   "section",
		Short: "Add a section",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.NewSectionRepository(db).Create(cmd.Context(), &section); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "section %d created\n", section.ID)
			return nil
		},
	}
	sectionCmd.Flags().StringVar(&section.Name, "name", "", "section name")
	_ = sectionCmd.MarkFlagRequired("name")

	var word models.Word
	wordCmd := &cobra.Command{
		Use:   "word",
		Short: "Add a word to a section",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := database.NewSectionRepository(db).GetByID(cmd.Context(), word.SectionID); err != nil {
				return fmt.Errorf("section %d: %w", word.SectionID, err)
			}
			if err := database.NewWordRepository(db).Create(cmd.Context(), &word); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "word %d created\n", word.ID)
			return nil
		},
	}
	wordCmd.Flags().Int64Var(&word.SectionID, "section", 0, "section ID")
	wordCmd.Flags().StringVar(&word.Word, "word", "", "the word")
	wordCmd.Flags().StringVar(&word.Translation, "translation", "", "its translation")
	wordCmd.Flags().StringVar(&word.Context, "context", "", "example sentence")
	_ = wordCmd.MarkFlagRequired("section")
	_ = wordCmd.MarkFlagRequired("word")
	_ = wordCmd.MarkFlagRequired("translation")

	listCmd := &cobra.Command{
		Use:   "sections",
		Short: "List sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			sections, err := database.NewSectionRepository(db).List(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range sections {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", s.ID, s.Name)
			}
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete content",
	}

	var deleteWordID int64
	deleteWordCmd := &cobra.Command{
		Use:   "word",
		Short: "Delete a word with its memory states and answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.NewWordRepository(db).Delete(cmd.Context(), deleteWordID); err != nil {
				return fmt.Errorf("word %d: %w", deleteWordID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "word %d deleted\n", deleteWordID)
			return nil
		},
	}
	deleteWordCmd.Flags().Int64Var(&deleteWordID, "id", 0, "word ID")
	_ = deleteWordCmd.MarkFlagRequired("id")

	addCmd.AddCommand(learnerCmd, sectionCmd, wordCmd)
	deleteCmd.AddCommand(deleteWordCmd)
	root.AddCommand(addCmd, deleteCmd, listCmd)
}
