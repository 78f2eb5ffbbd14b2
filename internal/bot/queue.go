package bot

import "sync"

// userQueues раскладывает обработку обновлений по очередям пользователей. Обновления одного
// пользователя обрабатываются по порядку, разных пользователей параллельно.
// Горутина пользователя завершается, когда его очередь пуста.
type userQueues struct {
	mu     sync.Mutex
	queues map[int64][]func()
	wg     sync.WaitGroup
}

func newUserQueues() *userQueues {
	return &userQueues{queues: make(map[int64][]func())}
}

func (q *userQueues) push(userID int64, job func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending, running := q.queues[userID]
	q.queues[userID] = append(pending, job)
	if running {
		return
	}
	q.wg.Add(1)
	go q.drain(userID)
}

func (q *userQueues) drain(userID int64) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		pending := q.queues[userID]
		if len(pending) == 0 {
			delete(q.queues, userID)
			q.mu.Unlock()
			return
		}
		next := pending[0]
		q.queues[userID] = pending[1:]
		q.mu.Unlock()

		next()
	}
}

// wait дожидается обработки всех принятых обновлений.
func (q *userQueues) wait() {
	q.wg.Wait()
}
