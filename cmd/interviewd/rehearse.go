package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/audio"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/session"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/webhook"
)

func newRehearseCmd() *cobra.Command {
	var (
		resumePath string
		jobPath    string
		sessionID  string
		answers    []string
		audioOut   string
	)
	cmd := &cobra.Command{
		Use:   "rehearse",
		Short: "Run an interview offline from recorded answers",
		Long: `Run one interview end to end without a live microphone. Each --answer file
(WAV, or Ogg/Opus when built with the opus tag) answers the next question.
The snapshot is saved after every step, so an interrupted rehearsal can be
continued with --session. Questions are spoken to --audio-out when set.`,
		Example: `  interviewd rehearse --resume cv.txt --job role.txt --answer a1.wav --answer a2.wav
  interviewd rehearse --session 6f1c... --answer a3.wav`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(answers) == 0 {
				return errors.New("at least one --answer is required")
			}
			if sessionID == "" && (resumePath == "" || jobPath == "") {
				return errors.New("--resume and --job are required unless --session is given")
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.cfg.ValidateRehearsal(); err != nil {
				return err
			}

			r, err := newRehearsal(a, audioOut)
			if err != nil {
				return err
			}
			in := rehearsalInput{sessionID: sessionID, answers: answers}
			if sessionID == "" {
				if in.resumeText, err = readText(resumePath); err != nil {
					return err
				}
				if in.jobDescription, err = readText(jobPath); err != nil {
					return err
				}
			}
			_, err = r.run(cmd.Context(), in, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVar(&resumePath, "resume", "", "Path to the candidate resume (plain text)")
	cmd.Flags().StringVar(&jobPath, "job", "", "Path to the job description (plain text)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Continue a stored session instead of starting one")
	cmd.Flags().StringArrayVar(&answers, "answer", nil, "Answer recording, one per question, in order")
	cmd.Flags().StringVar(&audioOut, "audio-out", "", "Directory to write spoken questions to")
	return cmd
}

func readText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(b), nil
}

type rehearsalInput struct {
	sessionID      string
	resumeText     string
	jobDescription string
	answers        []string
}

type rehearsal struct {
	factory  *session.Factory
	store    *session.SnapshotStore
	decoder  audio.Decoder
	sender   webhook.Sender
	logger   *slog.Logger
	timezone string
	loc      *time.Location
	audioOut string
	audioExt string
	opts     []session.Option
}

func newRehearsal(a *app, audioOut string) (*rehearsal, error) {
	store, err := a.snapshots()
	if err != nil {
		return nil, err
	}
	factory, err := do.Invoke[*session.Factory](a.injector)
	if err != nil {
		return nil, err
	}
	loc, err := reportLocation(a.cfg.ReportTimezone)
	if err != nil {
		return nil, err
	}
	return &rehearsal{
		factory:  factory,
		store:    store,
		decoder:  do.MustInvoke[audio.Decoder](a.injector),
		sender:   do.MustInvoke[webhook.Sender](a.injector),
		logger:   a.logger,
		timezone: a.cfg.ReportTimezone,
		loc:      loc,
		audioOut: audioOut,
		audioExt: a.cfg.OpenAITTSFormat,
	}, nil
}

func (r *rehearsal) run(ctx context.Context, in rehearsalInput, w io.Writer) (interview.Summary, error) {
	orch := r.factory.New(r.opts...)

	if in.sessionID != "" {
		s, err := r.store.Load(ctx, in.sessionID)
		if err != nil {
			return interview.Summary{}, fmt.Errorf("failed to load session: %w", err)
		}
		if s == nil {
			return interview.Summary{}, fmt.Errorf("session %s not found", in.sessionID)
		}
		if err := orch.Resume(s); err != nil {
			return interview.Summary{}, err
		}
	} else {
		if _, err := orch.StartSession(ctx, in.resumeText, in.jobDescription); err != nil {
			return interview.Summary{}, err
		}
		if err := r.save(ctx, orch); err != nil {
			return interview.Summary{}, err
		}
	}
	fmt.Fprintf(w, "Session %s\n", orch.Session().ID)

	for i, path := range in.answers {
		// A resumed session may already be waiting on a question.
		if orch.State() != interview.StateListening {
			if _, err := orch.GetNextQuestion(ctx); err != nil {
				return interview.Summary{}, err
			}
			if err := r.save(ctx, orch); err != nil {
				return interview.Summary{}, err
			}
		}
		n := len(orch.Session().Exchanges) + 1
		question := orch.Session().CurrentQuestion
		fmt.Fprintf(w, "\nQ%d: %s\n", n, question)
		if err := r.speak(ctx, orch, n, question); err != nil {
			return interview.Summary{}, err
		}

		clip, err := decodeFile(r.decoder, path)
		if err != nil {
			return interview.Summary{}, fmt.Errorf("answer %d: %w", i+1, err)
		}
		transcript, feedback, evaluation, err := orch.ProcessAnswer(ctx, clip.PCM, clip.SampleRate)
		if err != nil {
			return interview.Summary{}, fmt.Errorf("answer %d: %w", i+1, err)
		}
		if err := r.save(ctx, orch); err != nil {
			return interview.Summary{}, err
		}
		writeAnswer(w, n, transcript, feedback, evaluation)
	}

	summary, err := orch.EndSession(ctx)
	if err != nil {
		return interview.Summary{}, err
	}
	if err := r.save(ctx, orch); err != nil {
		return interview.Summary{}, err
	}
	s := orch.Session()
	fmt.Fprintf(w, "\n%s\n", session.BuildReport(s, summary, r.timezone, r.loc))

	if err := r.sender.SendSummary(ctx, session.BuildSummaryPayload(s, summary, r.timezone, r.loc)); err != nil {
		r.logger.ErrorContext(ctx, "failed to send session summary", "session_id", s.ID, "error", err)
	}
	return summary, nil
}

func (r *rehearsal) save(ctx context.Context, orch *session.Orchestrator) error {
	if err := r.store.Save(ctx, orch.Session()); err != nil {
		return fmt.Errorf("failed to save session snapshot: %w", err)
	}
	return nil
}

func (r *rehearsal) speak(ctx context.Context, orch *session.Orchestrator, n int, question string) error {
	if r.audioOut == "" {
		return nil
	}
	data, err := orch.SpeakQuestion(ctx, question)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.audioOut, 0o755); err != nil {
		return err
	}
	name := filepath.Join(r.audioOut, fmt.Sprintf("%s-q%02d.%s", orch.Session().ID, n, r.audioExt))
	return os.WriteFile(name, data, 0o644)
}

func decodeFile(d audio.Decoder, path string) (audio.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Clip{}, err
	}
	defer f.Close()
	clip, err := d.Decode(f)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return clip, nil
}

func writeAnswer(w io.Writer, n int, transcript string, cf *interview.CoachingFeedback, ev *interview.Evaluation) {
	fmt.Fprintf(w, "A%d: %s\n", n, transcript)
	if ev != nil {
		fmt.Fprintf(w, "    score %.1f/10", ev.Average())
		if ev.ImprovementTip != "" {
			fmt.Fprintf(w, ", tip: %s", ev.ImprovementTip)
		}
		fmt.Fprintln(w)
	}
	if cf != nil && cf.PrimaryAlert != "" {
		fmt.Fprintf(w, "    [%s] %s\n", cf.AlertLevel, cf.PrimaryAlert)
	}
}
