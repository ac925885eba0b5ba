package cli

import (
	"fmt"
	"strings"

	"github.com/raidtrust/raidtrust/pkg/data"
	"github.com/raidtrust/raidtrust/pkg/trust"
	"github.com/urfave/cli/v2"
)

var (
	feedbackSubjectFlag = &cli.StringFlag{
		Name:     "subject",
		Usage:    "Subject handle the feedback is about",
		Required: true,
	}

	feedbackOutcomeFlag = &cli.StringFlag{
		Name:     "outcome",
		Usage:    fmt.Sprintf("Feedback outcome [%s]", joinOutcomes()),
		Required: true,
	}

	feedbackWeightFlag = &cli.Float64Flag{
		Name:  "weight",
		Usage: "Feedback weight (submitter trust, must be >= 0)",
		Value: 1.0,
	}

	feedbackReporterFlag = &cli.StringFlag{
		Name:  "reporter",
		Usage: "Handle of the reporting player",
	}

	feedbackNoteFlag = &cli.StringFlag{
		Name:  "note",
		Usage: "Free-form note attached to the feedback",
	}

	feedbackIDFlag = &cli.StringFlag{
		Name:     "id",
		Usage:    "Feedback event ID",
		Required: true,
	}

	feedbackStatusFlag = &cli.StringFlag{
		Name:  "status",
		Usage: "Filter by status [active, disputed, removed]",
	}

	feedbackSinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "Only feedback created at or after this time (YYYY-MM-DDTHH:MM:SSZ)",
	}

	feedbackListSubjectFlag = &cli.StringFlag{
		Name:  "subject",
		Usage: "Filter by subject handle",
	}

	resolutionFlag = &cli.StringFlag{
		Name:     "resolution",
		Usage:    "Dispute resolution [upheld, rejected, partial]",
		Required: true,
	}

	feedbackCmd = &cli.Command{
		Name:            "feedback",
		Aliases:         []string{"f"},
		Usage:           "Feedback event operations",
		HideHelpCommand: true,
		Subcommands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Record a feedback event about a subject",
				Action: cmdAddFeedback,
				Flags: []cli.Flag{
					feedbackSubjectFlag,
					feedbackOutcomeFlag,
					feedbackWeightFlag,
					feedbackReporterFlag,
					feedbackNoteFlag,
				},
			},
			{
				Name:    "list",
				Usage:   "List feedback events",
				Aliases: []string{"l"},
				Action:  cmdListFeedback,
				Flags: []cli.Flag{
					feedbackListSubjectFlag,
					feedbackStatusFlag,
					feedbackSinceFlag,
					queryLimitFlag,
				},
			},
			{
				Name:   "dispute",
				Usage:  "Mark an active feedback event as disputed",
				Action: cmdDisputeFeedback,
				Flags:  []cli.Flag{feedbackIDFlag},
			},
			{
				Name: "resolve",
				Usage: "Resolve a disputed feedback event " +
					"(upheld removes it, rejected restores it, partial keeps it dampened)",
				Action: cmdResolveFeedback,
				Flags:  []cli.Flag{feedbackIDFlag, resolutionFlag},
			},
			{
				Name:   "remove",
				Usage:  "Exclude a feedback event from scoring",
				Action: cmdRemoveFeedback,
				Flags:  []cli.Flag{feedbackIDFlag},
			},
		},
	}
)

func joinOutcomes() string {
	vals := make([]string, 0, len(trust.Outcomes))
	for _, o := range trust.Outcomes {
		vals = append(vals, string(o))
	}
	return strings.Join(vals, ", ")
}

func cmdAddFeedback(c *cli.Context) error {
	cfg := getConfig(c)
	handle := c.String(feedbackSubjectFlag.Name)

	outcome, err := trust.ParseOutcome(c.String(feedbackOutcomeFlag.Name))
	if err != nil {
		return err
	}

	s, err := data.GetSubject(cfg.DB, handle)
	if err != nil {
		return fmt.Errorf("failed to get subject: %w", err)
	}
	if s == nil {
		s = &data.Subject{Handle: handle}
		if err := data.SaveSubject(cfg.DB, s); err != nil {
			return fmt.Errorf("failed to create subject: %w", err)
		}
	}

	f := &data.Feedback{
		SubjectID: s.ID,
		Reporter:  c.String(feedbackReporterFlag.Name),
		Outcome:   outcome,
		Weight:    c.Float64(feedbackWeightFlag.Name),
		Note:      c.String(feedbackNoteFlag.Name),
	}

	if err := data.SaveFeedback(cfg.DB, f); err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	return encode(f)
}

func cmdListFeedback(c *cli.Context) error {
	cfg := getConfig(c)

	filter := data.FeedbackFilter{
		Since: c.String(feedbackSinceFlag.Name),
		Limit: c.Int(queryLimitFlag.Name),
	}

	if status := c.String(feedbackStatusFlag.Name); status != "" {
		s, err := trust.ParseStatus(status)
		if err != nil {
			return err
		}
		filter.Status = s
	}

	if handle := c.String(feedbackListSubjectFlag.Name); handle != "" {
		s, err := data.GetSubject(cfg.DB, handle)
		if err != nil {
			return fmt.Errorf("failed to get subject: %w", err)
		}
		if s == nil {
			return fmt.Errorf("subject not found: %s", handle)
		}
		filter.SubjectID = s.ID
	}

	list, err := data.ListFeedback(cfg.DB, filter)
	if err != nil {
		return fmt.Errorf("failed to list feedback: %w", err)
	}

	return encode(list)
}

func cmdDisputeFeedback(c *cli.Context) error {
	cfg := getConfig(c)
	id := c.String(feedbackIDFlag.Name)

	if err := data.DisputeFeedback(cfg.DB, id); err != nil {
		return fmt.Errorf("failed to dispute feedback: %w", err)
	}

	return encode(map[string]string{"id": id, "status": string(trust.StatusDisputed)})
}

func cmdResolveFeedback(c *cli.Context) error {
	cfg := getConfig(c)
	id := c.String(feedbackIDFlag.Name)
	resolution := data.Resolution(strings.ToLower(c.String(resolutionFlag.Name)))

	if err := data.ResolveDispute(cfg.DB, id, resolution); err != nil {
		return fmt.Errorf("failed to resolve dispute: %w", err)
	}

	return encode(map[string]string{"id": id, "resolution": string(resolution)})
}

func cmdRemoveFeedback(c *cli.Context) error {
	cfg := getConfig(c)
	id := c.String(feedbackIDFlag.Name)

	if err := data.RemoveFeedback(cfg.DB, id); err != nil {
		return fmt.Errorf("failed to remove feedback: %w", err)
	}

	return encode(map[string]string{"id": id, "status": string(trust.StatusRemoved)})
}
