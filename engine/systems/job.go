package systems

import (
	"sync"

	"github.com/spaghettifunk/anima-assets/engine/core"
)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief Invoked when the job starts. Required. */
	OnStart func(input interface{}) (interface{}, error)
	/** @brief Invoked with the result when the job succeeds. Optional. */
	OnComplete func(result interface{})
	/** @brief Invoked with the error when the job fails. Optional. */
	OnFailure func(err error)
	/** @brief Invoked after OnComplete or OnFailure, whatever the outcome. Optional. */
	OnCompletionCallback func()
	/** @brief Data passed to OnStart. */
	InputParams interface{}
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	// guards jobQueue against sends after close
	mutex    sync.RWMutex
	isClosed bool
}

func NewJobSystem(numWorkers int, queueSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, core.ErrNoWorkers
	}
	if queueSize < 0 {
		return nil, core.ErrNegativeQueueSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, queueSize),
	}

	js.start()

	core.LogDebug("job system started with %d workers", numWorkers)
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	if job.OnCompletionCallback != nil {
		defer job.OnCompletionCallback()
	}
	result, err := job.OnStart(job.InputParams)
	if err != nil {
		core.LogError(err.Error())
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete(result)
	}
}

func (js *JobSystem) Workers() int {
	return js.numWorkers
}

/**
 * @brief Shuts the job system down. Queued jobs still run before it returns.
 */
func (js *JobSystem) Shutdown() error {
	js.mutex.Lock()
	if js.isClosed {
		js.mutex.Unlock()
		return nil
	}
	js.isClosed = true
	close(js.jobQueue)
	js.mutex.Unlock()

	js.wg.Wait()
	return nil
}

// AddWorkNonBlocking queues the job from a new goroutine and returns immediately.
func (js *JobSystem) AddWorkNonBlocking(jt JobTask) {
	go js.Submit(jt)
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while the queue is full.
 * @param jt The description of the job to be executed.
 * @return False if the job system was shut down and the job was dropped.
 */
func (js *JobSystem) Submit(jt JobTask) bool {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	if js.isClosed {
		core.LogWarn("job submitted after the job system shut down, dropping it")
		return false
	}
	js.jobQueue <- jt
	return true
}
