package cli

import (
	"fmt"
	"io"

	"pulse/internal/bootstrap"
	"pulse/internal/seed"
	"pulse/internal/service"

	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	seedOpts := seed.DefaultOptions()
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo users, posts and interactions",
		Long: `Create demo users, a follow graph, posts, likes and comments.

Writes go through the engine, so notifications are emitted exactly as they
would be for real traffic.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := opts.open(cmd.Context(), bootstrap.Options{})
			if err != nil {
				return err
			}
			if cfg.IsProduction() && !force {
				return fmt.Errorf("refusing to seed %q without --force", cfg.Env)
			}

			engine := service.NewEngine(db, cfg.FeedCacheTTL())
			summary, err := seed.NewSeeder(db, engine, seedOpts).Run(cmd.Context())
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), summary, func(w io.Writer) {
				fmt.Fprintf(w, "seeded users=%d posts=%d follows=%d likes=%d comments=%d\n",
					summary.Users, summary.Posts, summary.Follows, summary.Likes, summary.Comments)
			})
		},
	}

	cmd.Flags().IntVar(&seedOpts.NumUsers, "users", seedOpts.NumUsers, "number of users to create")
	cmd.Flags().IntVar(&seedOpts.PostsPerUser, "posts", seedOpts.PostsPerUser, "posts per user")
	cmd.Flags().Float64Var(&seedOpts.FollowRatio, "follow-ratio", seedOpts.FollowRatio, "chance that one user follows another")
	cmd.Flags().Float64Var(&seedOpts.LikeRatio, "like-ratio", seedOpts.LikeRatio, "chance that a user likes a post")
	cmd.Flags().IntVar(&seedOpts.MaxComments, "max-comments", seedOpts.MaxComments, "maximum comments per post")
	cmd.Flags().BoolVar(&seedOpts.ShouldClean, "clean", false, "delete existing data first")
	cmd.Flags().Int64Var(&seedOpts.RandSeed, "seed", 0, "random seed (0 = time based)")
	cmd.Flags().BoolVar(&force, "force", false, "allow seeding a production database")
	return cmd
}
