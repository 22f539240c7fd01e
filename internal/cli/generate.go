package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/resa/internal/client"
	"github.com/evcraddock/resa/internal/contacts"
	"github.com/evcraddock/resa/internal/email"
	"github.com/evcraddock/resa/internal/itinerary"
	"github.com/evcraddock/resa/internal/printout"
	"github.com/evcraddock/resa/internal/resa"
	"github.com/evcraddock/resa/internal/tour"
)

type generateOptions struct {
	pdfDir     string
	emlDir     string
	jobs       int
	noContacts bool
}

// input is one tour document read from a file or stdin.
type input struct {
	name string
	data []byte
}

// result is the generated output for one input.
type result struct {
	File     string         `json:"file"`
	Response *resa.Response `json:"response"`

	agent tour.AgentInfo
	pdf   []byte
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate [file...]",
		Short: "Generate an itinerary and email drafts from tour documents",
		Long: "Read one or more tour documents (JSON) and print the timed itinerary with every email draft. " +
			"Reads stdin when no file is given. Missing listing-agent details are filled from the local directory.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.pdfDir, "pdf-dir", "", "write a printable PDF itinerary per tour into this directory")
	cmd.Flags().StringVar(&opts.emlDir, "eml-dir", "", "write every draft as an unsent .eml file into this directory")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 4, "tours generated in parallel")
	cmd.Flags().BoolVar(&opts.noContacts, "no-contacts", false, "do not fill listing agents from the local directory")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, opts generateOptions) error {
	inputs, err := readInputs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var finder contacts.Finder
	if !opts.noContacts {
		repo, database, err := newContactsRepo()
		if err != nil {
			return fmt.Errorf("opening listing-agent directory: %w", err)
		}
		defer closeDB(database)
		finder = repo
	}

	c := newAPIClient()
	if c != nil {
		slog.Debug("generating remotely", "server", getServerURL())
	}

	results := make([]result, len(inputs))
	var g errgroup.Group
	g.SetLimit(max(opts.jobs, 1))
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			r, err := generateOne(in, cfg.Agent, finder, c, opts.pdfDir != "")
			if err != nil {
				return fmt.Errorf("%s: %w", in.name, err)
			}
			results[i] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	written, err := writeArtifacts(results, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		for _, path := range written {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
		}
		if len(results) == 1 {
			return printJSON(out, results[0].Response)
		}
		return printJSON(out, results)
	}

	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "# %s\n\n", r.File)
		}
		if err := printItinerary(out, r.Response.Itinerary); err != nil {
			return err
		}
		if link := r.Response.Itinerary.DirectionsURL(); link != "" {
			fmt.Fprintf(out, "\nDirections: %s\n", link)
		}
		if err := printMessages(out, r.Response.Messages(r.agent)); err != nil {
			return err
		}
	}
	for _, path := range written {
		fmt.Fprintf(out, "\nWrote %s", path)
	}
	if len(written) > 0 {
		fmt.Fprintln(out)
	}
	return nil
}

// readInputs reads every named file, or stdin when there are none or the
// only name is "-".
func readInputs(stdin io.Reader, args []string) ([]input, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return []input{{name: "stdin", data: data}}, nil
	}

	inputs := make([]input, len(args))
	for i, name := range args {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading tour document: %w", err)
		}
		inputs[i] = input{name: name, data: data}
	}
	return inputs, nil
}

// generateOne decodes one document, applies the configured agent and the
// listing-agent directory, and generates it locally or on the server.
func generateOne(in input, defaultAgent tour.AgentInfo, finder contacts.Finder, c *client.Client, wantPDF bool) (*result, error) {
	req, err := tour.Decode(bytes.NewReader(in.data))
	if err != nil {
		return nil, err
	}

	applyDefaultAgent(req, defaultAgent)

	if finder != nil {
		n, err := contacts.Fill(req, finder)
		if err != nil {
			return nil, fmt.Errorf("looking up listing agents: %w", err)
		}
		if n > 0 {
			slog.Debug("filled listing agents from directory", "file", in.name, "count", n)
		}
	}

	r := &result{File: in.name, agent: req.Normalized().Agent}

	if c == nil {
		r.Response, err = resa.Generate(req)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	r.Response, err = c.Generate(req)
	if err != nil {
		return nil, err
	}
	if wantPDF {
		r.pdf, err = c.ItineraryPDF(req)
		if err != nil {
			return nil, fmt.Errorf("fetching printout: %w", err)
		}
	}
	return r, nil
}

// applyDefaultAgent fills empty agent fields from the configured profile.
func applyDefaultAgent(req *tour.Request, def tour.AgentInfo) {
	if req.Agent.Name == "" {
		req.Agent.Name = def.Name
	}
	if req.Agent.Email == "" {
		req.Agent.Email = def.Email
	}
	if req.Agent.Phone == "" {
		req.Agent.Phone = def.Phone
	}
}

// writeArtifacts writes the PDF and .eml files requested by opts and
// returns their paths.
func writeArtifacts(results []result, opts generateOptions) ([]string, error) {
	var written []string
	used := map[string]int{}

	for _, r := range results {
		base := r.Response.Itinerary.Slug()
		used[base]++
		if n := used[base]; n > 1 {
			base = fmt.Sprintf("%s-%d", base, n)
		}

		if opts.pdfDir != "" {
			path := filepath.Join(opts.pdfDir, base+".pdf")
			err := writeFile(path, func(w io.Writer) error {
				if r.pdf != nil {
					_, err := w.Write(r.pdf)
					return err
				}
				return printout.Render(w, r.Response.Itinerary, r.agent)
			})
			if err != nil {
				return written, err
			}
			written = append(written, path)
		}

		if opts.emlDir != "" {
			for j, m := range r.Response.Messages(r.agent) {
				name := fmt.Sprintf("%s-%02d-%s.eml", base, j+1, itinerary.Slug(m.Label))
				path := filepath.Join(opts.emlDir, name)
				msg := m.Message
				if err := writeFile(path, func(w io.Writer) error { return email.WriteEML(w, msg) }); err != nil {
					return written, err
				}
				written = append(written, path)
			}
		}
	}

	return written, nil
}

// writeFile creates path, including parent directories, and fills it
// with write.
func writeFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
