package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v2"

	"grundctl/pkg/data"
	"grundctl/pkg/quality"
)

const (
	queryResultLimitDefault = 500

	districtMinListingsDefault = 1
)

var (
	queryLimitFlag = &cli.IntFlag{
		Name:     "limit",
		Usage:    "Limits number of result returned",
		Value:    queryResultLimitDefault,
		Required: false,
	}

	listingIDFlag = &cli.StringFlag{
		Name:     "id",
		Usage:    "Listing identifier",
		Required: true,
	}

	districtFlag = &cli.StringFlag{
		Name:  "district",
		Usage: "Filter by Hamburg district (e.g. Duvenstedt)",
	}

	bucketFlag = &cli.StringFlag{
		Name:  "bucket",
		Usage: fmt.Sprintf("Filter by quality bucket [%s]", strings.Join(bucketNames(), ", ")),
	}

	minPriceFlag = &cli.Float64Flag{
		Name:  "min-price",
		Usage: "Minimum purchase price in EUR",
	}

	maxPriceFlag = &cli.Float64Flag{
		Name:  "max-price",
		Usage: "Maximum purchase price in EUR",
	}

	minAreaFlag = &cli.Float64Flag{
		Name:  "min-area",
		Usage: "Minimum plot area in square meters",
	}

	minListingsFlag = &cli.IntFlag{
		Name:  "min-listings",
		Usage: "Minimum number of listings a district needs to be included",
		Value: districtMinListingsDefault,
	}

	topFlag = &cli.IntFlag{
		Name:  "top",
		Usage: "Number of top deals to return",
		Value: 10,
	}

	queryCmd = &cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "List data query operations",
		Subcommands: []*cli.Command{
			{
				Name:    "listings",
				Usage:   "List scored listings, best quality first",
				Aliases: []string{"l"},
				Action:  cmdQueryListings,
				Flags: []cli.Flag{
					districtFlag,
					bucketFlag,
					minPriceFlag,
					maxPriceFlag,
					minAreaFlag,
					queryLimitFlag,
				},
			},
			{
				Name:   "listing",
				Usage:  "Get one listing with its full score and valuation detail",
				Action: cmdQueryListing,
				Flags: []cli.Flag{
					listingIDFlag,
				},
			},
			{
				Name:    "districts",
				Usage:   "Aggregate listings per district (counts, prices, quality)",
				Aliases: []string{"d"},
				Action:  cmdQueryDistricts,
				Flags: []cli.Flag{
					minListingsFlag,
				},
			},
			{
				Name:    "buckets",
				Usage:   "Aggregate listings per quality bucket",
				Aliases: []string{"b"},
				Action:  cmdQueryBuckets,
			},
			{
				Name:   "segments",
				Usage:  "Aggregate listings per purchase price segment",
				Action: cmdQuerySegments,
			},
			{
				Name:   "sizes",
				Usage:  "Aggregate listings per plot size category",
				Action: cmdQuerySizes,
			},
			{
				Name:   "deals",
				Usage:  "List the best deals by combined quality and value score",
				Action: cmdQueryDeals,
				Flags: []cli.Flag{
					topFlag,
				},
			},
			{
				Name:    "summary",
				Usage:   "Dataset summary (counts, price spread, average quality)",
				Aliases: []string{"s"},
				Action:  cmdQuerySummary,
			},
		},
	}
)

func bucketNames() []string {
	names := make([]string, 0, len(quality.Buckets))
	for _, b := range quality.Buckets {
		names = append(names, string(b))
	}
	return names
}

func optional(val string) *string {
	if val == "" || val == "undefined" {
		return nil
	}
	return &val
}

func optionalFloat(c *cli.Context, flag *cli.Float64Flag) *float64 {
	if !c.IsSet(flag.Name) {
		return nil
	}
	v := c.Float64(flag.Name)
	return &v
}

func cmdQueryListings(c *cli.Context) error {
	limit := c.Int(queryLimitFlag.Name)
	if limit == 0 || limit > queryResultLimitDefault {
		limit = queryResultLimitDefault
	}

	q := &data.ListingSearchCriteria{
		District: optional(c.String(districtFlag.Name)),
		Bucket:   optional(c.String(bucketFlag.Name)),
		MinPrice: optionalFloat(c, minPriceFlag),
		MaxPrice: optionalFloat(c, maxPriceFlag),
		MinArea:  optionalFloat(c, minAreaFlag),
		PageSize: limit,
	}

	slog.Debug("query listings", "criteria", q)

	cfg := getConfig(c)

	list, err := data.SearchListings(cfg.DB, q)
	if err != nil {
		return fmt.Errorf("failed to query listings: %w", err)
	}

	if err := encode(list); err != nil {
		return fmt.Errorf("error encoding list: %w", err)
	}

	return nil
}

func cmdQueryListing(c *cli.Context) error {
	id := c.String(listingIDFlag.Name)
	if id == "" {
		return cli.ShowSubcommandHelp(c)
	}

	cfg := getConfig(c)

	l, err := data.GetListing(cfg.DB, id)
	if err != nil {
		return fmt.Errorf("failed to query listing: %w", err)
	}
	if l == nil {
		return fmt.Errorf("listing not found: %s", id)
	}

	if err := encode(l); err != nil {
		return fmt.Errorf("error encoding: %+v: %w", l, err)
	}

	return nil
}

func cmdQueryDistricts(c *cli.Context) error {
	cfg := getConfig(c)

	list, err := data.GetDistrictStats(cfg.DB, c.Int(minListingsFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to query district stats: %w", err)
	}

	return encode(list)
}

func cmdQueryBuckets(c *cli.Context) error {
	cfg := getConfig(c)

	list, err := data.GetBucketStats(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to query bucket stats: %w", err)
	}

	return encode(list)
}

func cmdQuerySegments(c *cli.Context) error {
	cfg := getConfig(c)

	list, err := data.GetPriceSegments(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to query price segments: %w", err)
	}

	return encode(list)
}

func cmdQuerySizes(c *cli.Context) error {
	cfg := getConfig(c)

	list, err := data.GetSizeCategories(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to query size categories: %w", err)
	}

	return encode(list)
}

func cmdQueryDeals(c *cli.Context) error {
	cfg := getConfig(c)

	list, err := data.GetTopDeals(cfg.DB, c.Int(topFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to query deals: %w", err)
	}

	return encode(list)
}

func cmdQuerySummary(c *cli.Context) error {
	cfg := getConfig(c)

	s, err := data.GetSummary(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to query summary: %w", err)
	}

	return encode(s)
}
