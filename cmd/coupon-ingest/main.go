// Command coupon-ingest loads bulk promo-code dumps into the coupons table.
// A code is considered valid when it appears in at least two of the three
// dump files; membership is tested with per-file bloom filters so the dumps
// never need to fit in memory at once.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/repository"
)

const (
	bloomCapacity = 120_000_000
	bloomFPR      = 0.001
	numFiles      = 3
	progressEvery = 10_000_000
	minCodeLen    = 8
	maxCodeLen    = 10
)

// codeRule describes the discount rule to attach to a known promo code.
type codeRule struct {
	discountType coupon.DiscountType
	value        string
	description  string
}

var codeRules = map[string]codeRule{
	"FIFTYOFF": {discountType: coupon.DiscountPercentage, value: "50", description: "50% off entire order"},
	"SIXTYOFF": {discountType: coupon.DiscountPercentage, value: "60", description: "60% off entire order"},
	"HAPPYHRS": {discountType: coupon.DiscountPercentage, value: "18", description: "Happy Hours: 18% off"},
	"GNULINUX": {discountType: coupon.DiscountPercentage, value: "15", description: "Open source discount: 15% off"},
	"OVER9000": {discountType: coupon.DiscountFlat, value: "9", description: "9.00 off your order"},
	"TENNERRR": {discountType: coupon.DiscountFlat, value: "10", description: "10.00 off your order"},
}

var defaultRule = codeRule{
	discountType: coupon.DiscountPercentage,
	value:        "10",
	description:  "Valid promo code: 10% off",
}

// dump is one gzipped code file together with the per-pass state built
// while streaming it.
type dump struct {
	path   string
	bit    uint // this file's position in the presence bitmask
	filter *bloom.BloomFilter
	hits   map[string]uint // pass 2: code -> own bit, when seen elsewhere too
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing couponbaseN.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("coupon ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	dumps := make([]*dump, numFiles)
	for i := range dumps {
		dumps[i] = &dump{
			path: filepath.Join(dataDir, fmt.Sprintf("couponbase%d.gz", i+1)),
			bit:  uint(1) << uint(i),
		}
		if _, err := os.Stat(dumps[i].path); err != nil {
			return errors.Wrapf(err, "check file %s", dumps[i].path)
		}
	}

	slog.Info("pass 1: building bloom filters", slog.Int("files", numFiles))
	if err := inParallel(ctx, dumps, (*dump).buildFilter); err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	slog.Info("pass 2: finding candidate codes")
	if err := inParallel(ctx, dumps, func(d *dump, ctx context.Context) error {
		return d.collectHits(ctx, dumps)
	}); err != nil {
		return errors.Wrap(err, "find valid codes")
	}

	validCodes := crossMatched(dumps)
	slog.Info("valid codes found", slog.Int("count", len(validCodes)))
	if len(validCodes) == 0 {
		slog.Info("no valid codes to insert")
		return nil
	}

	slog.Info("connecting to database")
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := writeCoupons(ctx, pool, validCodes); err != nil {
		return errors.Wrap(err, "write coupons to database")
	}
	return nil
}

// inParallel runs fn once per dump in its own goroutine.
func inParallel(ctx context.Context, dumps []*dump, fn func(*dump, context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, d := range dumps {
		g.Go(func() error { return fn(d, ctx) })
	}
	return g.Wait()
}

// buildFilter streams the dump once and fills its bloom filter.
func (d *dump) buildFilter(ctx context.Context) error {
	d.filter = bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	var count uint64
	err := d.scan(ctx, func(code string) {
		d.filter.AddString(code)
		count++
		if count%progressEvery == 0 {
			slog.Info("pass 1 progress", slog.String("file", d.path), slog.Uint64("codes", count))
		}
	})
	if err != nil {
		return errors.Wrapf(err, "build filter for %s", d.path)
	}

	slog.Info("pass 1 complete", slog.String("file", d.path), slog.Uint64("total_codes", count))
	return nil
}

// collectHits re-streams the dump and records every code that probably
// appears in at least one OTHER dump's filter.
func (d *dump) collectHits(ctx context.Context, all []*dump) error {
	d.hits = make(map[string]uint)

	var count uint64
	err := d.scan(ctx, func(code string) {
		count++
		if count%progressEvery == 0 {
			slog.Info("pass 2 progress", slog.String("file", d.path), slog.Uint64("codes", count))
		}
		for _, other := range all {
			if other == d {
				continue
			}
			if other.filter.TestString(code) {
				d.hits[code] |= d.bit
				break
			}
		}
	})
	if err != nil {
		return errors.Wrapf(err, "scan %s for candidates", d.path)
	}

	slog.Info("pass 2 complete",
		slog.String("file", d.path),
		slog.Uint64("total_codes", count),
		slog.Int("candidates", len(d.hits)),
	)
	return nil
}

// crossMatched merges the per-dump presence masks and keeps codes seen in
// two or more dumps.
func crossMatched(dumps []*dump) []string {
	merged := make(map[string]uint)
	for _, d := range dumps {
		for code, mask := range d.hits {
			merged[code] |= mask
		}
	}

	var valid []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			valid = append(valid, code)
		}
	}
	return valid
}

// scan decompresses the dump and calls fn for every line that looks like a
// promo code. Length limits weed out headers and corrupt lines.
func (d *dump) scan(ctx context.Context, fn func(code string)) error {
	f, err := os.Open(d.path)
	if err != nil {
		return errors.Wrapf(err, "open %s", d.path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", d.path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		code := scanner.Text()
		if len(code) < minCodeLen || len(code) > maxCodeLen {
			continue
		}
		fn(code)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", d.path)
	}
	return nil
}

const upsertCouponSQL = `INSERT INTO coupons (code, discount_type, value, description, status)
	VALUES ($1, $2, $3, $4, 'ENABLED')
	ON CONFLICT (code) DO UPDATE SET
		discount_type = EXCLUDED.discount_type, value = EXCLUDED.value,
		description = EXCLUDED.description, status = 'ENABLED'`

// writeCoupons upserts all valid coupon codes into the database.
func writeCoupons(ctx context.Context, pool *pgxpool.Pool, codes []string) error {
	slog.Info("writing coupons to database", slog.Int("count", len(codes)))

	for i, code := range codes {
		rule, ok := codeRules[code]
		if !ok {
			rule = defaultRule
		}

		value, err := decimal.NewFromString(rule.value)
		if err != nil {
			return errors.Wrapf(err, "parse decimal value for code %s", code)
		}

		if _, err := pool.Exec(ctx, upsertCouponSQL, code, string(rule.discountType), value, rule.description); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", code)
		}

		if (i+1)%100 == 0 || i+1 == len(codes) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(codes)))
		}
	}
	return nil
}
