package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "social_posts_created_total",
		Help: "Canonical posts created.",
	})

	Reposts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_reposts_total",
		Help: "Repost requests by outcome (created, duplicate).",
	}, []string{"result"})

	Likes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_likes_total",
		Help: "Like requests by outcome (added, unchanged).",
	}, []string{"result"})

	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "social_comments_created_total",
		Help: "Comments created.",
	})

	PostsHydrated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "social_posts_hydrated_batch_size",
		Help:    "Number of posts assembled per read.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})
)
