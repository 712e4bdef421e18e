package run

import "context"

func (s *Server) hookWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.hookCh:
			ran, err := s.hook.Dispatch(ctx, job)
			if err != nil {
				s.logger.Errorf("hook: %v", err)
				s.metrics.hooksFailed.Inc()
				continue
			}
			if ran {
				s.metrics.hooksSent.Inc()
			}
		}
	}
}
