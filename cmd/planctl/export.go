package main

import (
	"bytes"
	"fmt"

	"github.com/flowplan/backend-go/internal/config"
	"github.com/flowplan/backend-go/internal/export"
	"github.com/flowplan/backend-go/internal/storage"
	"github.com/urfave/cli/v2"
)

func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "storage-endpoint",
			Usage:   "S3-compatible storage endpoint",
			EnvVars: []string{"STORAGE_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "storage-access-key",
			Usage:   "Storage access key",
			EnvVars: []string{"STORAGE_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:    "storage-secret-key",
			Usage:   "Storage secret key",
			EnvVars: []string{"STORAGE_SECRET_KEY"},
		},
		&cli.StringFlag{
			Name:    "storage-bucket",
			Usage:   "Storage bucket",
			EnvVars: []string{"STORAGE_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "storage-region",
			Usage:   "Storage region",
			Value:   "us-east-1",
			EnvVars: []string{"STORAGE_REGION"},
		},
		&cli.BoolFlag{
			Name:    "storage-use-ssl",
			Usage:   "Use TLS for storage",
			Value:   true,
			EnvVars: []string{"STORAGE_USE_SSL"},
		},
	}
}

func newStorageClient(c *cli.Context) (storage.ObjectStorage, error) {
	return storage.NewMinioClient(config.StorageConfig{
		Endpoint:  c.String("storage-endpoint"),
		AccessKey: c.String("storage-access-key"),
		SecretKey: c.String("storage-secret-key"),
		Bucket:    c.String("storage-bucket"),
		Region:    c.String("storage-region"),
		UseSSL:    c.Bool("storage-use-ssl"),
	})
}

func runExport(c *cli.Context) error {
	svc, err := serviceFromContext(c)
	if err != nil {
		return err
	}
	asOf, err := resolveAsOf(c)
	if err != nil {
		return err
	}
	horizon, err := resolveHorizon(c)
	if err != nil {
		return err
	}
	ids, err := resolveSeriesIDs(c, svc)
	if err != nil {
		return err
	}

	client, err := newStorageClient(c)
	if err != nil {
		return err
	}

	results, err := svc.ProjectMany(c.Context, ids, horizon, asOf)
	if err != nil {
		return err
	}

	asOfDay := asOf.Format(asOfLayout)
	uploaded := 0
	for _, result := range results {
		if result.EmptySeries {
			fmt.Fprintf(c.App.Writer, "skipping %s: no inventory observations\n", result.SeriesID)
			continue
		}

		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, result.Days); err != nil {
			return fmt.Errorf("failed rendering %s: %w", result.SeriesID, err)
		}

		key := export.ObjectKey(result.SeriesID, asOfDay)
		if err := client.UploadObject(c.Context, key, buf.Bytes()); err != nil {
			return fmt.Errorf("failed uploading %s: %w", key, err)
		}

		fmt.Fprintf(c.App.Writer, "uploaded %s (%d days)\n", key, len(result.Days))
		uploaded++
	}

	fmt.Fprintf(c.App.Writer, "exported %d of %d series\n", uploaded, len(results))
	return nil
}
