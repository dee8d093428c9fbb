package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/metapub/go-meta-api-wrapper/pkg/types"
)

// refFor turns a CLI argument into a media reference: anything that looks
// like an HTTP URL publishes by reference, everything else is a local path.
func refFor(s string) types.MediaReference {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return types.MediaURL(s)
	}
	return types.MediaPath(s)
}

func newPostCommand() *cobra.Command {
	var (
		caption  string
		photos   []string
		videos   []string
		toPage   bool
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish a post",
		Long:  "Publish a post to the Instagram business account (default) or, with --page, to the Facebook page. Multiple medias publish as a carousel.",
		Example: `  metapub post --caption "hello" --photo https://example.com/a.jpg
  metapub post --photo a.jpg --photo b.jpg --video clip.mp4 --caption "carousel"
  metapub post --page --caption "page update"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if toPage {
				req := &types.PagePostRequest{
					Message:  caption,
					Schedule: types.Schedule{Now: true},
				}
				for _, p := range photos {
					req.Photos = append(req.Photos, refFor(p))
				}
				if len(videos) > 0 {
					ref := refFor(videos[0])
					req.Video = &ref
				}
				id, err := client.Pages().CreatePost(ctx, req)
				if err != nil {
					return err
				}
				logger.Info("page post published", "id", id, "url", client.Pages().PostURL(id))
				return nil
			}

			req := &types.PostRequest{Caption: caption}
			for _, p := range photos {
				req.Medias = append(req.Medias, types.MediaItem{Kind: types.MediaPhoto, Ref: refFor(p)})
			}
			for _, v := range videos {
				req.Medias = append(req.Medias, types.MediaItem{Kind: types.MediaVideo, Ref: refFor(v)})
			}
			id, err := client.Business().CreatePost(ctx, req)
			if err != nil {
				return err
			}
			link, err := client.Business().GetPostLink(ctx, id)
			if err != nil {
				logger.Warn("published but could not fetch the permalink", "id", id, "err", err)
				link = ""
			}
			logger.Info("post published", "id", id, "link", link)
			return nil
		},
	}

	cmd.Flags().StringVarP(&caption, "caption", "c", "", "Caption or message text")
	cmd.Flags().StringArrayVar(&photos, "photo", nil, "Photo URL or file path (repeatable)")
	cmd.Flags().StringArrayVar(&videos, "video", nil, "Video URL or file path (repeatable)")
	cmd.Flags().BoolVar(&toPage, "page", false, "Publish to the Facebook page instead of the business account")

	return cmd
}

func newStoryCommand() *cobra.Command {
	var (
		photo  string
		video  string
		toPage bool
	)

	cmd := &cobra.Command{
		Use:   "story",
		Short: "Publish an ephemeral story",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			kind, media := types.MediaPhoto, photo
			if video != "" {
				kind, media = types.MediaVideo, video
			}

			var id string
			if toPage {
				id, err = client.Pages().CreateStory(ctx, &types.PageStoryRequest{Kind: kind, Media: refFor(media)})
			} else {
				id, err = client.Business().CreateStory(ctx, &types.StoryRequest{Kind: kind, Ref: refFor(media)})
			}
			if err != nil {
				return err
			}
			logger.Info("story published", "id", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&photo, "photo", "", "Photo URL or file path")
	cmd.Flags().StringVar(&video, "video", "", "Video URL or file path")
	cmd.Flags().BoolVar(&toPage, "page", false, "Publish to the Facebook page instead of the business account")
	cmd.MarkFlagsMutuallyExclusive("photo", "video")
	cmd.MarkFlagsOneRequired("photo", "video")

	return cmd
}

func newReelCommand() *cobra.Command {
	var (
		video       string
		title       string
		description string
		thumbnail   string
	)

	cmd := &cobra.Command{
		Use:   "reel",
		Short: "Publish a reel to the Facebook page",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			req := &types.ReelRequest{
				Media:       refFor(video),
				Title:       title,
				Description: description,
			}
			if thumbnail != "" {
				ref := refFor(thumbnail)
				req.Thumbnail = &ref
			}

			result, err := client.Pages().CreateReel(cmd.Context(), req)
			if err != nil {
				return err
			}
			logger.Info("reel published", "post", result.PostID, "video", result.VideoID)
			return nil
		},
	}

	cmd.Flags().StringVar(&video, "video", "", "Video URL or file path")
	cmd.Flags().StringVar(&title, "title", "", "Reel title")
	cmd.Flags().StringVar(&description, "description", "", "Reel description")
	cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "Thumbnail image URL or file path")
	cmd.MarkFlagRequired("video")

	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete a page post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			ok, err := client.Pages().DeletePost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			logger.Info("post deleted", "id", args[0], "success", ok)
			return nil
		},
	}
}

func newAccountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List the pages the token manages",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			accounts, err := client.GetAccounts(cmd.Context())
			if err != nil {
				return err
			}
			for _, a := range accounts {
				logger.Info("account", "id", a.ID, "name", a.Name, "category", a.Category)
			}
			return nil
		},
	}
}
