package cli

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/billmal071/epubpress/internal/config"
	"github.com/billmal071/epubpress/internal/db"
	"github.com/billmal071/epubpress/internal/network"
	"github.com/billmal071/epubpress/internal/press"
	"github.com/billmal071/epubpress/internal/sections"
	"github.com/billmal071/epubpress/internal/tui"
)

var publishCmd = &cobra.Command{
	Use:   "publish [urls...]",
	Short: "Publish web pages as a book",
	Long: `Submit web pages to EpubPress to be bound into a book.

By default the server fetches every url itself. With --fetch the pages are
downloaded locally first and sent as sections; --render does the same
through a headless browser for script-rendered pages, and --pick lets you
choose which pages to keep.

Examples:
  epubpress publish https://a.example/1 https://a.example/2
  epubpress publish --title "Reading list" --filetype mobi <urls...>
  epubpress publish --fetch --pick --watch --download <urls...>`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringP("title", "t", "", "book title (default: title of the first page when fetching)")
	publishCmd.Flags().StringP("description", "d", "", "book description")
	publishCmd.Flags().StringP("email", "e", "", "email address stored with the book (default: book.email)")
	publishCmd.Flags().StringP("filetype", "f", "", "output format: epub or mobi (default: book.filetype)")
	publishCmd.Flags().Bool("fetch", false, "fetch pages locally and publish them as sections")
	publishCmd.Flags().Bool("render", false, "fetch pages with a headless browser (implies --fetch)")
	publishCmd.Flags().Bool("pick", false, "choose which fetched pages to include (implies --fetch)")
	publishCmd.Flags().BoolP("watch", "w", false, "wait for the build to finish")
	publishCmd.Flags().Bool("download", false, "download the book once built (implies --watch)")
	publishCmd.Flags().StringP("output", "o", "", "output directory for --download (default: downloads.path)")
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Get()

	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	email, _ := cmd.Flags().GetString("email")
	rawFiletype, _ := cmd.Flags().GetString("filetype")
	fetch, _ := cmd.Flags().GetBool("fetch")
	render, _ := cmd.Flags().GetBool("render")
	pick, _ := cmd.Flags().GetBool("pick")
	follow, _ := cmd.Flags().GetBool("watch")
	download, _ := cmd.Flags().GetBool("download")
	outputDir, _ := cmd.Flags().GetString("output")

	for _, u := range args {
		if parsed, err := url.Parse(u); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid url: %s", u)
		}
	}

	if rawFiletype == "" {
		rawFiletype = cfg.Book.Filetype
	}
	ft, err := filetypeFlag(rawFiletype)
	if err != nil {
		return err
	}
	if email == "" {
		email = cfg.Book.Email
	}

	props := press.Props{
		Title:       title,
		Description: description,
		URLs:        args,
		Email:       email,
		Filetype:    string(ft),
	}

	render = render || (fetch && cfg.Sections.Render)
	if fetch || render || pick {
		res, err := fetchSections(ctx, args, render)
		if err != nil {
			return err
		}
		if props.Title == "" {
			props.Title = res.Title
		}
		props.Sections = res.Sections
		if pick {
			chosen, err := tui.RunSectionPicker(res.Sections, res.Titles)
			if err != nil {
				return err
			}
			if chosen == nil {
				fmt.Println("Cancelled.")
				return nil
			}
			props.Sections = chosen
		}
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	book := client.NewBook(props)

	Printf("Publishing to %s\n", book.PublishURL())
	if err := client.Publish(ctx, book); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	rec := &db.Book{
		RemoteID:    book.ID(),
		Title:       book.Title(),
		Description: book.Description(),
		Filetype:    string(book.Filetype()),
		Email:       book.Email(),
		BaseURL:     book.BaseURL(),
		URLs:        sourceURLs(book),
	}
	if err := db.CreateBook(rec); err != nil {
		Errorf("failed to record book: %v", err)
		Successf("Published (id %s)", book.ID())
	} else {
		Successf("Published #%d (id %s)", rec.ID, book.ID())
	}

	if !follow && !download {
		fmt.Printf("Check progress with: epubpress watch %s\n", book.ID())
		return nil
	}

	status, err := followBuild(ctx, client, book, false)
	if err != nil {
		return err
	}
	Successf("Built: %s", status.Message)

	if download {
		path, err := saveBook(ctx, client, book, "", outputDir)
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		Successf("Downloaded: %s", path)
	}
	return nil
}

// fetchSections pulls page content locally through colly or, for rendered
// pages, a headless browser. Pages still in the page cache are not fetched
// again.
func fetchSections(ctx context.Context, urls []string, render bool) (*sections.Result, error) {
	cfg := config.Get()
	useCache := cfg.Cache.Enabled && cfg.Cache.TTL > 0

	res := &sections.Result{
		Titles:   make([]string, len(urls)),
		Sections: make([]press.Section, len(urls)),
	}

	var missing []string
	var missingAt []int
	for i, u := range urls {
		if useCache {
			page, err := db.GetCachedPage(db.PageCacheKey(u, render))
			if err != nil {
				Printf("Warning: page cache lookup failed: %v\n", err)
			} else if page != nil {
				res.Titles[i] = page.Title
				res.Sections[i] = press.Section{URL: u, HTML: page.HTML}
				continue
			}
		}
		missing = append(missing, u)
		missingAt = append(missingAt, i)
	}

	if len(missing) > 0 {
		var fetcher sections.Fetcher
		if render {
			fetcher = sections.NewBrowserFetcher(cfg.Network.UserAgent, cfg.Sections.Timeout)
		} else {
			httpClient, err := network.NewHTTPClient(cfg.Network)
			if err != nil {
				return nil, err
			}
			fetcher = sections.NewCollyFetcher(cfg.Network.UserAgent, cfg.Sections.Timeout, httpClient.Transport)
		}

		fmt.Printf("Fetching %d page(s)...\n", len(missing))
		fetched, err := fetcher.Fetch(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch pages: %w", err)
		}

		for j, i := range missingAt {
			res.Titles[i] = fetched.Titles[j]
			res.Sections[i] = fetched.Sections[j]
			if useCache {
				key := db.PageCacheKey(urls[i], render)
				if err := db.SaveCachedPage(key, urls[i], fetched.Titles[j], fetched.Sections[j].HTML, cfg.Cache.TTL); err != nil {
					Printf("Warning: failed to cache page: %v\n", err)
				}
			}
		}
	}

	Printf("%d page(s) from cache\n", len(urls)-len(missing))
	res.Title = res.Titles[0]
	return res, nil
}

// sourceURLs lists the pages a book was built from
func sourceURLs(book *press.Book) []string {
	if s := book.Sections(); len(s) > 0 {
		urls := make([]string, len(s))
		for i, section := range s {
			urls[i] = section.URL
		}
		return urls
	}
	return book.URLs()
}
