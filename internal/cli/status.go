package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/joebot/nightslayer-bot/internal/config"
	"github.com/joebot/nightslayer-bot/internal/cron"
)

// RunStatus displays the current configuration status with styled output.
// err is the validation error from loading, if any; jobs are the scheduled
// reports.
func RunStatus(cfg *config.Config, envFile string, err error, jobs []cron.Job) {
	fmt.Println()
	fmt.Println(TitleStyle.Render(fmt.Sprintf("  %s %s Status", Logo, Name)))
	fmt.Println()

	fmt.Printf("  %-12s %s  %s\n", "Env file", StatusBadge(fileExists(envFile)), DimStyle.Render(envFile))
	if cfg == nil {
		fmt.Println()
		fmt.Println(ErrStyle.Render("  " + err.Error()))
		fmt.Println()
		return
	}
	fmt.Printf("  %-12s %s  %s\n", "Database", StatusBadge(fileExists(cfg.Database.Path)), DimStyle.Render(cfg.Database.Path))
	fmt.Printf("  %-12s %s  %s\n", "Discord", StatusBadge(cfg.Discord.Token != ""), DimStyle.Render(allowList(cfg.Discord.AllowFrom)))
	fmt.Println()

	fmt.Println("  " + BoldStyle.Render("Model"))
	llm := cfg.LLM
	detail := "(greeting only)"
	if llm.Enabled() {
		detail = llm.Provider
		if llm.Model != "" {
			detail += " " + llm.Model
		}
		if llm.APIURL != "" {
			detail += "  " + DimStyle.Render(llm.APIURL)
		}
	}
	fmt.Printf("    %s  %s\n", StatusBadge(llm.Enabled()), detail)
	fmt.Println()

	fmt.Println("  " + BoldStyle.Render("Battle.net"))
	bn := cfg.BattleNet
	fmt.Printf("    %s  %s %s\n", StatusBadge(bn.Enabled()), bn.Region, DimStyle.Render(bn.Realm+" / "+bn.Namespace))
	fmt.Println()

	fmt.Println("  " + BoldStyle.Render("Scheduled"))
	if len(jobs) == 0 {
		fmt.Printf("    %s  %s\n", StatusBadge(false), DimStyle.Render("(nothing scheduled)"))
	}
	for _, job := range jobs {
		fmt.Printf("    %s  %s %s %s\n", StatusBadge(job.Enabled), job.Name, job.Schedule.Expr,
			DimStyle.Render(jobDetail(job)))
	}
	fmt.Println()

	fmt.Printf("  %-12s %s %s\n", "Log", cfg.Log.Level, DimStyle.Render(cfg.Log.Format))
	if err != nil {
		fmt.Println()
		fmt.Println(ErrStyle.Render("  " + err.Error()))
	}
	fmt.Println()
}

func jobDetail(job cron.Job) string {
	tz := job.Schedule.TZ
	if tz == "" {
		tz = "local"
	}
	next := "never"
	if !job.State.NextRunAt.IsZero() {
		next = job.State.NextRunAt.Format(time.RFC1123)
	}
	return fmt.Sprintf("(%s) → %s, next %s", tz, job.To, next)
}

func allowList(ids []string) string {
	if len(ids) == 0 {
		return "(all users)"
	}
	return fmt.Sprintf("(%d allowed users)", len(ids))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
