package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"resume-builder/config"
	"resume-builder/core"
	"resume-builder/persist"
	"resume-builder/preview"
	"resume-builder/resume"
	"resume-builder/stores"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// openLocal opens the single document edited from the command line. The
// in-memory backend would drop every edit on exit, so the filesystem store
// stands in for it. The returned function writes pending changes and closes
// the backend.
func openLocal(ctx context.Context, cfg *config.Config) (*resume.Store, func(), error) {
	if cfg.StorageType == "memory" {
		cfg.StorageType = "filesystem"
	}
	blobs, closeStore, err := stores.GetStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	adapter := persist.NewAdapter(blobs, persist.LocalKey, cfg.SaveDebounce)
	store, err := resume.New(ctx, resume.Options{
		Persistence: adapter,
		Logger:      logrus.WithField("blob_key", persist.LocalKey),
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return store, func() {
		adapter.Flush()
		store.Close()
		closeStore()
	}, nil
}

// withLocal runs fn against the local document.
func withLocal(cmd *cobra.Command, fn func(store *resume.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, done, err := openLocal(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer done()
	return fn(store)
}

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Render the local resume as HTML",
	Args:  cobra.NoArgs,
	RunE:  runPrint,
}

var (
	printTemplate string
	printJSON     bool
)

func init() {
	printCmd.Flags().StringVarP(&printTemplate, "template", "t", "", "Template to render with (defaults to the document's)")
	printCmd.Flags().BoolVar(&printJSON, "json", false, "Print the stored JSON instead of HTML")
	rootCmd.AddCommand(printCmd)
}

func runPrint(cmd *cobra.Command, _ []string) error {
	return withLocal(cmd, func(store *resume.Store) error {
		doc := store.Snapshot()
		if printJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}
		id := doc.Template
		if printTemplate != "" {
			id = core.TemplateID(printTemplate)
		}
		return preview.RenderTemplate(cmd.OutOrStdout(), doc, id)
	})
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Apply one edit to the local resume",
}

// listOps adapts one list section to the add/set/remove/move subcommands.
type listOps struct {
	add    func(s *resume.Store, title string) string
	set    func(s *resume.Store, index int, field, value string) error
	remove func(s *resume.Store, index int) error
	move   func(s *resume.Store, from, to int) error
}

func init() {
	editCmd.AddCommand(
		&cobra.Command{
			Use:   "personal <field> <value>",
			Short: "Set a personal field",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				field, err := core.ParsePersonalField(args[0])
				if err != nil {
					return err
				}
				return withLocal(cmd, func(s *resume.Store) error {
					return s.UpdatePersonalField(field, args[1])
				})
			},
		},
		listCommand("experience", listOps{
			add: func(s *resume.Store, _ string) string { return s.AddExperienceEntry() },
			set: func(s *resume.Store, index int, field, value string) error {
				f, err := core.ParseExperienceField(field)
				if err != nil {
					return err
				}
				return s.UpdateExperienceEntry(index, f, value)
			},
			remove: (*resume.Store).RemoveExperienceEntry,
			move:   (*resume.Store).MoveExperienceEntry,
		}),
		listCommand("education", listOps{
			add: func(s *resume.Store, _ string) string { return s.AddEducationEntry() },
			set: func(s *resume.Store, index int, field, value string) error {
				f, err := core.ParseEducationField(field)
				if err != nil {
					return err
				}
				return s.UpdateEducationEntry(index, f, value)
			},
			remove: (*resume.Store).RemoveEducationEntry,
			move:   (*resume.Store).MoveEducationEntry,
		}),
		listCommand("custom", listOps{
			add: (*resume.Store).AddCustomSection,
			set: func(s *resume.Store, index int, field, value string) error {
				f, err := core.ParseCustomSectionField(field)
				if err != nil {
					return err
				}
				return s.UpdateCustomSection(index, f, value)
			},
			remove: (*resume.Store).RemoveCustomSection,
			move:   (*resume.Store).MoveCustomSection,
		}),
		skillCommand(),
		&cobra.Command{
			Use:   "template <id>",
			Short: "Switch the presentation template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withLocal(cmd, func(s *resume.Store) error {
					return s.ChangeTemplate(core.TemplateID(args[0]))
				})
			},
		},
	)
	rootCmd.AddCommand(editCmd)
}

func listCommand(name string, ops listOps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: "Edit " + name + " entries",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add [title]",
			Short: "Append an empty entry and print its id",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				var title string
				if len(args) == 1 {
					title = args[0]
				}
				return withLocal(c, func(s *resume.Store) error {
					fmt.Fprintln(c.OutOrStdout(), ops.add(s, title))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <index> <field> <value>",
			Short: "Set one field of an entry",
			Args:  cobra.ExactArgs(3),
			RunE: func(c *cobra.Command, args []string) error {
				index, err := parseIndex(args[0])
				if err != nil {
					return err
				}
				return withLocal(c, func(s *resume.Store) error {
					return ops.set(s, index, args[1], args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "remove <index>",
			Short: "Remove an entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				index, err := parseIndex(args[0])
				if err != nil {
					return err
				}
				return withLocal(c, func(s *resume.Store) error {
					return ops.remove(s, index)
				})
			},
		},
		&cobra.Command{
			Use:   "move <from> <to>",
			Short: "Move an entry to another position",
			Args:  cobra.ExactArgs(2),
			RunE: func(c *cobra.Command, args []string) error {
				from, err := parseIndex(args[0])
				if err != nil {
					return err
				}
				to, err := parseIndex(args[1])
				if err != nil {
					return err
				}
				return withLocal(c, func(s *resume.Store) error {
					return ops.move(s, from, to)
				})
			},
		},
	)
	return cmd
}

func skillCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skill",
		Short: "Edit the skill list",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <skill>",
			Short: "Add a skill unless it is already listed",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				return withLocal(c, func(s *resume.Store) error {
					if !s.AddSkill(args[0]) {
						logrus.WithField("skill", args[0]).Info("Skill already listed or blank, nothing to do")
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <index>",
			Short: "Remove the skill at index",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				index, err := parseIndex(args[0])
				if err != nil {
					return err
				}
				return withLocal(c, func(s *resume.Store) error {
					return s.RemoveSkill(index)
				})
			},
		},
	)
	return cmd
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return i, nil
}
