// Package jobs runs the background schedule maintenance.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gympoint/class-scheduler/internal/repository"
	"github.com/gympoint/class-scheduler/internal/scheduler"
)

// StartGenerator schedules the nightly run that keeps the rolling
// booking window filled: for every instructor with active templates it
// materializes the sessions the window is still missing. Returns the
// cron runner so main can stop it on shutdown.
func StartGenerator(spec string, users *repository.UserRepo, sched *scheduler.Scheduler, windowDays int) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		runGeneration(users, sched, windowDays)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("jobs: schedule generator running (%s, window %d days)", spec, windowDays)
	return c, nil
}

func runGeneration(users *repository.UserRepo, sched *scheduler.Scheduler, windowDays int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ids, err := users.ListActiveInstructorIDs(ctx)
	if err != nil {
		log.Printf("jobs: list instructors: %v", err)
		return
	}
	total := 0
	for _, id := range ids {
		n, err := sched.GenerateForInstructor(ctx, id, windowDays)
		if err != nil {
			// One instructor failing must not starve the rest.
			log.Printf("jobs: generate for instructor %d: %v", id, err)
			continue
		}
		total += n
	}
	log.Printf("jobs: generation pass done, %d instructors, %d sessions created", len(ids), total)
}
