package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	email    string
	password string
	name     string
)

var dogsCmd = &cobra.Command{
	Use:   "dogs",
	Short: "List dogs you have not swiped yet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dogs, err := session.listDogs(cmd.Context())
		if err != nil {
			return err
		}
		if len(dogs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no more dogs to show")
			return nil
		}
		for _, d := range dogs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s, %d\t%s (%s, %s)\n",
				d.ID, d.Name, d.Breed, d.Age, d.Shelter.Name, d.Shelter.City, d.Shelter.State)
		}
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <dogId>",
	Short: "Swipe right on a dog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return session.swipe(cmd.Context(), args[0], true)
	},
}

var passCmd = &cobra.Command{
	Use:   "pass <dogId>",
	Short: "Swipe left on a dog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return session.swipe(cmd.Context(), args[0], false)
	},
}

var likedCmd = &cobra.Command{
	Use:   "liked",
	Short: "List dogs you liked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		token := session.accessToken()
		if token == "" {
			for _, rec := range session.ledger.Liked() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t(local)\n", rec.DogID)
			}
			return nil
		}
		dogs, err := session.client.ListLiked(cmd.Context(), token)
		if err != nil {
			return err
		}
		for _, d := range dogs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", d.ID, d.Name, d.Shelter.Name)
		}
		return nil
	},
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show swipes saved locally before sign-in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		records := session.ledger.All()
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "local ledger is empty")
			return nil
		}
		for _, rec := range records {
			decision := "pass"
			if rec.Liked {
				decision = "like"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
				rec.DogID, decision, time.UnixMilli(rec.Timestamp).UTC().Format(time.RFC3339))
		}
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and merge local swipes into it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tokens, err := session.client.Signup(cmd.Context(), email, password, name)
		if err != nil {
			return err
		}
		return session.signIn(cmd.Context(), tokens)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and merge local swipes into your account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tokens, err := session.client.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		return session.signIn(cmd.Context(), tokens)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of this device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := session.signOut(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		return nil
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Retry merging local swipes into the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		token := session.accessToken()
		if token == "" {
			return errNotSignedIn
		}
		res := session.coordinator.Run(cmd.Context(), token)
		session.reportMerge(res)
		if res.Err != nil {
			return res.Err
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringVar(&email, "email", "", "Account email")
		c.Flags().StringVar(&password, "password", envOr("DOGSWIPE_PASSWORD", ""), "Account password")
		_ = c.MarkFlagRequired("email")
	}
	signupCmd.Flags().StringVar(&name, "name", "", "Display name")
	_ = signupCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(
		dogsCmd,
		likeCmd,
		passCmd,
		likedCmd,
		ledgerCmd,
		signupCmd,
		loginCmd,
		logoutCmd,
		mergeCmd,
	)
}
