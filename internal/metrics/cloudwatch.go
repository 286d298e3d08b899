package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "Qrious/Generator"
	cloudwatchTimeoutSeconds = 5
	environmentProduction    = "production"
)

// PutMetricDataAPI is the subset of the CloudWatch client used here
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      PutMetricDataAPI
	enabled     bool
	environment string
	async       bool
}

// NewClient creates a CloudWatch metrics client. It is a no-op outside
// production or when enabled is false.
func NewClient(ctx context.Context, environment string, enabled bool) (*Client, error) {
	if !enabled || environment != environmentProduction {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false, environment: environment}, nil
	}

	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)
	return NewClientWithAPI(cloudwatch.NewFromConfig(cfg), environment), nil
}

// NewClientWithAPI builds an enabled client over api
func NewClientWithAPI(api PutMetricDataAPI, environment string) *Client {
	return &Client{
		client:      api,
		enabled:     true,
		environment: environment,
		async:       true,
	}
}

// Enabled reports whether metrics are sent
func (m *Client) Enabled() bool {
	return m.enabled
}

// RecordGeneration records a settled generation
func (m *Client) RecordGeneration(_ context.Context, kind string, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	m.dispatch(func(ctx context.Context) {
		dimensions := []types.Dimension{
			{Name: aws.String("Kind"), Value: aws.String(kind)},
			{Name: aws.String("Environment"), Value: aws.String(m.environment)},
		}

		metricName := "Generations"
		if !success {
			metricName = "GenerationErrors"
		}
		if err := m.putMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record %s metric: %v", metricName, err)
		}

		latencyMs := float64(duration.Milliseconds())
		if err := m.putMetric(ctx, "GenerationLatency", latencyMs, types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record GenerationLatency metric: %v", err)
		}
	})
}

// RecordExport records a download attempt
func (m *Client) RecordExport(_ context.Context, format string, success bool) {
	if !m.enabled {
		return
	}

	m.dispatch(func(ctx context.Context) {
		dimensions := []types.Dimension{
			{Name: aws.String("Format"), Value: aws.String(format)},
			{Name: aws.String("Success"), Value: aws.String(boolToString(success))},
			{Name: aws.String("Environment"), Value: aws.String(m.environment)},
		}
		if err := m.putMetric(ctx, "Exports", 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record Exports metric: %v", err)
		}
	})
}

// dispatch runs fn off the caller's goroutine so CloudWatch latency never
// delays a state transition
func (m *Client) dispatch(fn func(ctx context.Context)) {
	if !m.async {
		fn(context.Background())
		return
	}
	go fn(context.Background())
}

// putMetric sends a metric to CloudWatch
func (m *Client) putMetric(
	ctx context.Context,
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
