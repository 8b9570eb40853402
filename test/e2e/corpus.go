// Package e2e provides end-to-end tests over a seeded item corpus and
// a set of goal queries with expected winners.
package e2e

import (
	"fmt"

	"github.com/hyperjump/osusume/internal/models"
)

// GoalTestCase defines a goal query and the item ID(s) that should rank
// inside the top slate. At least one of ExpectedItemIDs must appear.
type GoalTestCase struct {
	UserID          string
	Query           string
	ExpectedItemIDs []string
	Description     string
}

// Corpus holds candidate items and goal test cases.
type Corpus struct {
	Items     []*models.CandidateItemInput
	TestCases []GoalTestCase
}

type topic struct {
	slug        string
	title       string
	text        string
	contentType string
	difficulty  string
	tags        []string
}

var topics = []topic{
	{"flask-basics", "Flask web development tutorial", "Build your first web application with Flask step by step, from routes to templates.", "tutorial", "beginner", []string{"python", "flask"}},
	{"flask-blueprints", "Structuring Flask apps with blueprints", "Blueprints, application factories, and URL routing patterns for larger Flask codebases.", "article", "intermediate", []string{"python", "flask"}},
	{"django-orm", "Django ORM deep dive", "Querysets, migrations, and performance pitfalls in the Django ORM.", "article", "intermediate", []string{"python", "django"}},
	{"k8s-networking", "Debugging Kubernetes networking", "Diagnosing DNS failures, service routing, and CNI problems in Kubernetes clusters.", "documentation", "advanced", []string{"kubernetes", "docker"}},
	{"k8s-intro", "Kubernetes from scratch", "A beginner walkthrough of pods, deployments, and services in Kubernetes.", "tutorial", "beginner", []string{"kubernetes"}},
	{"react-hooks", "React hooks explained", "useState, useEffect, and custom hooks with worked examples in React.", "tutorial", "beginner", []string{"react", "javascript"}},
	{"react-perf", "Profiling React render performance", "Memoization, concurrent rendering, and flame graph analysis for React apps.", "article", "advanced", []string{"react", "javascript"}},
	{"postgres-indexes", "PostgreSQL index internals", "B-tree, GIN, and BRIN indexes in PostgreSQL and when the planner uses them.", "paper", "advanced", []string{"postgresql"}},
	{"postgres-tuning", "Tuning PostgreSQL queries", "Reading EXPLAIN output and fixing slow queries in PostgreSQL.", "documentation", "intermediate", []string{"postgresql"}},
	{"rust-ownership", "Ownership and borrowing in Rust", "The Rust ownership model, lifetimes, and the borrow checker from first principles.", "tutorial", "intermediate", []string{"rust"}},
	{"docker-images", "Building lean Docker images", "Multi-stage builds and layer caching strategies for smaller Docker images.", "article", "intermediate", []string{"docker"}},
	{"jvm-gc", "JVM garbage collection talk", "A conference talk on generational garbage collection and heap tuning in the JVM.", "video", "advanced", []string{"java"}},
}

// BuildCorpus returns a corpus large enough to exercise recall, scoring,
// and diversity, with padded variants so pools exceed the slate size.
func BuildCorpus() *Corpus {
	items := make([]*models.CandidateItemInput, 0, len(topics)*3)
	for _, tp := range topics {
		for v := 0; v < 3; v++ {
			id := tp.slug
			title := tp.title
			if v > 0 {
				id = fmt.Sprintf("%s-v%d", tp.slug, v)
				title = fmt.Sprintf("%s (part %d)", tp.title, v+1)
			}
			items = append(items, &models.CandidateItemInput{
				ID:      id,
				OwnerID: "curator",
				Title:   title,
				RawText: tp.text,
				Annotation: &models.Annotation{
					ContentType:    tp.contentType,
					Difficulty:     tp.difficulty,
					TechnologyTags: tp.tags,
				},
			})
		}
	}
	return &Corpus{Items: items, TestCases: buildGoalTestCases()}
}

func buildGoalTestCases() []GoalTestCase {
	return []GoalTestCase{
		{
			UserID:          "alice",
			Query:           "learn flask web development step by step",
			ExpectedItemIDs: []string{"flask-basics", "flask-basics-v1", "flask-basics-v2"},
			Description:     "beginner flask learning goal surfaces the flask tutorial",
		},
		{
			UserID:          "bob",
			Query:           "debug kubernetes networking issue in my cluster",
			ExpectedItemIDs: []string{"k8s-networking", "k8s-networking-v1", "k8s-networking-v2"},
			Description:     "kubernetes troubleshooting goal surfaces the networking docs",
		},
		{
			UserID:          "carol",
			Query:           "understand react hooks tutorial",
			ExpectedItemIDs: []string{"react-hooks", "react-hooks-v1", "react-hooks-v2"},
			Description:     "react learning goal surfaces the hooks tutorial",
		},
		{
			UserID:          "dave",
			Query:           "fix slow postgres queries",
			ExpectedItemIDs: []string{"postgres-tuning", "postgres-tuning-v1", "postgres-tuning-v2", "postgres-indexes", "postgres-indexes-v1", "postgres-indexes-v2"},
			Description:     "postgres troubleshooting goal surfaces the tuning material",
		},
	}
}

func containsAny(got []string, expected []string) bool {
	set := make(map[string]struct{}, len(got))
	for _, id := range got {
		set[id] = struct{}{}
	}
	for _, id := range expected {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
