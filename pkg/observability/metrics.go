// Package observability reports request metrics to CloudWatch. Recording is
// non-blocking: datapoints are buffered and flushed in the background, and a
// full buffer drops the datapoint rather than stalling a request.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	flushInterval = 30 * time.Second
	bufferSize    = 256

	// PutMetricData caps a single call at 1000 datapoints; stay well under
	maxFlushBatch = 500
)

// CloudWatchClient is the subset of the CloudWatch API the collector uses
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

type datapoint struct {
	method   string
	status   int
	duration time.Duration
	at       time.Time
}

// Collector buffers request datapoints and ships them to CloudWatch
type Collector struct {
	client    CloudWatchClient
	namespace string
	logger    *zap.Logger

	// points is never closed; in-flight requests may still send after
	// Stop, and those datapoints are simply dropped
	points chan datapoint
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewCollector starts a collector publishing under
// "CalendarBackend/<environment>".
func NewCollector(client CloudWatchClient, environment string, logger *zap.Logger) *Collector {
	c := &Collector{
		client:    client,
		namespace: fmt.Sprintf("CalendarBackend/%s", environment),
		logger:    logger,
		points:    make(chan datapoint, bufferSize),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go c.run()
	return c
}

// Middleware records one datapoint per request
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		select {
		case c.points <- datapoint{
			method:   r.Method,
			status:   ww.Status(),
			duration: time.Since(start),
			at:       start,
		}:
		default:
			// Buffer full; losing a datapoint beats blocking the request
		}
	})
}

// Stop flushes pending datapoints and stops the background loop. Safe to
// call more than once.
func (c *Collector) Stop() {
	c.once.Do(func() { close(c.quit) })
	<-c.done
}

func (c *Collector) run() {
	defer close(c.done)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	var pending []datapoint
	for {
		select {
		case p := <-c.points:
			pending = append(pending, p)
			if len(pending) >= maxFlushBatch {
				c.flush(pending)
				pending = nil
			}
		case <-ticker.C:
			c.flush(pending)
			pending = nil
		case <-c.quit:
			// Drain whatever is already buffered, then flush and exit
			for {
				select {
				case p := <-c.points:
					pending = append(pending, p)
				default:
					c.flush(pending)
					return
				}
			}
		}
	}
}

func (c *Collector) flush(points []datapoint) {
	if len(points) == 0 {
		return
	}

	data := make([]types.MetricDatum, 0, len(points)*2)
	for _, p := range points {
		dims := []types.Dimension{
			{Name: aws.String("Method"), Value: aws.String(p.method)},
			{Name: aws.String("StatusCode"), Value: aws.String(strconv.Itoa(p.status))},
		}
		data = append(data,
			types.MetricDatum{
				MetricName: aws.String("RequestCount"),
				Dimensions: dims,
				Timestamp:  aws.Time(p.at),
				Unit:       types.StandardUnitCount,
				Value:      aws.Float64(1),
			},
			types.MetricDatum{
				MetricName: aws.String("RequestLatency"),
				Dimensions: dims,
				Timestamp:  aws.Time(p.at),
				Unit:       types.StandardUnitMilliseconds,
				Value:      aws.Float64(float64(p.duration.Milliseconds())),
			},
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(c.namespace),
		MetricData: data,
	})
	if err != nil {
		c.logger.Warn("failed to flush metrics", zap.Error(err))
	}
}
