package syncer

import (
	"time"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
)

// backfill retrieves the recent history of a freshly connected account:
// uids inside the day window, capped at MaxMessages, fetched in batches
// with a cooperative pause between bursts. It holds the mailbox lock for
// the whole scan and returns the number of documents indexed.
func (s *Supervisor) backfill() (int, error) {
	mailbox := s.currentMailbox()
	since := time.Now().AddDate(0, 0, -s.sync.WindowDays)

	mailbox.Lock()
	defer mailbox.Unlock()

	uids, err := mailbox.SearchSince(since)
	if err != nil {
		return 0, err
	}
	if len(uids) > s.sync.MaxMessages {
		// hard ceiling, not a "most recent N" guarantee: the listing is
		// not required to be date ordered
		uids = uids[:s.sync.MaxMessages]
	}

	count := 0
	processed := 0
	for start := 0; start < len(uids); start += s.sync.BatchSize {
		if s.stopped() {
			return count, nil
		}
		end := start + s.sync.BatchSize
		if end > len(uids) {
			end = len(uids)
		}
		messages, err := mailbox.FetchMessages(uids[start:end], true)
		if err != nil {
			s.log.Printf("account %s: cannot fetch batch: %s", s.account.ID, err)
			continue
		}
		for _, msg := range messages {
			if s.stopped() {
				return count, nil
			}
			if msg.InternalDate.Before(since) {
				// the SINCE search criterion only has day granularity
				continue
			}
			_, err := s.normalizer.Ingest(s.account.ID, email.FolderInbox, msg)
			if err != nil {
				s.log.Printf("%s", err)
			}
			if !IsKind(err, SinkWriteFailed) {
				count++
			}
			s.advance(msg.Uid)
			processed++
			if processed%s.sync.PauseEvery == 0 && !s.pause() {
				return count, nil
			}
		}
	}
	return count, nil
}

// pause sleeps for the configured pacing delay, cut short by stop.
func (s *Supervisor) pause() bool {
	timer := time.NewTimer(s.sync.Pause)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.stop:
		return false
	}
}
