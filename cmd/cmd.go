// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing, initialize the database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in through the browser with OAuth2",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: 2 * time.Minute,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the login URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show whether a login is stored and who it belongs to",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored login",
				Action: r.AuthLogout,
			},
		},
	}
}

// questionsCommand browses the question bank
func questionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "questions",
		Aliases: []string{"q"},
		Usage:   "Browse interview questions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List questions",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Question kind (practice or real)",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Filter by category",
					},
					&cli.StringFlag{
						Name:  "difficulty",
						Usage: "Filter by difficulty",
					},
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Full text search",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of questions to return",
						Value: 50,
					},
				}, jsonFlags()...),
				Action: r.QuestionsList,
			},
			{
				Name:  "show",
				Usage: "Show a single question",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  jsonFlags(),
				Action: r.QuestionsShow,
			},
		},
	}
}

// answerCommand submits answers for feedback
func answerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "answer",
		Usage: "Answer questions and get feedback",
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "Submit a typed or recorded answer",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "question",
						Aliases:  []string{"q"},
						Usage:    "Question ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Feedback format: txt, markdown or json",
						Value:   "txt",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Also write the feedback to this file",
					},
				},
				MutuallyExclusiveFlags: []cli.MutuallyExclusiveFlags{{
					Required: true,
					Flags: [][]cli.Flag{
						{&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Answer text"}},
						{&cli.StringFlag{Name: "audio", Aliases: []string{"a"}, Usage: "Path to a recorded answer"}},
					},
				}},
				Action: r.AnswerSubmit,
			},
		},
	}
}

// speakCommand reads text aloud through the TTS endpoint
func speakCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "speak",
		Usage: "Synthesize a question or text to an audio file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "voice",
				Usage: "Voice to synthesize with (default from config)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Directory to write the clip to (default from config)",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Ignore any cached clip",
			},
		},
		MutuallyExclusiveFlags: []cli.MutuallyExclusiveFlags{{
			Required: true,
			Flags: [][]cli.Flag{
				{&cli.StringFlag{Name: "question", Aliases: []string{"q"}, Usage: "Question ID to read aloud"}},
				{&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Text to read aloud"}},
			},
		}},
		Action: r.Speak,
	}
}

// historyCommand lists and exports past answers
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Review past answers",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List past answers",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of answers",
						Value: 20,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: txt, markdown, csv or json",
						Value:   "txt",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to this file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "local",
						Usage: "Read from the local database instead of the backend",
					},
					&cli.StringFlag{
						Name:  "question",
						Usage: "Only answers to this question (local only)",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "export",
				Usage: "Export the full feedback of past answers, one file per answer",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of answers",
						Value: 20,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Report format: txt, markdown or json",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: prepx_export_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent writers",
						Value: 4,
					},
				},
				Action: r.HistoryExport,
			},
		},
	}
}

// cacheCommand manages synthesized clips kept on disk
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage cached speech clips",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached clips",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "voice",
						Usage: "Only clips for this voice",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of clips",
					},
				}, jsonFlags()...),
				Action: r.CacheList,
			},
			{
				Name:  "clear",
				Usage: "Delete cached clips and their files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "voice",
						Usage: "Only clips for this voice",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the backend API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the raw response",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "delete",
				Usage: "Direct DELETE, prints the response if there is one",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.APIDelete,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive practice.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive question browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Question kind (practice or real)",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Filter by category",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log file used while the TUI is running",
				Value: "./tmp/prepx-tui.log",
			},
		},
		Action: r.TUI,
	}
}
