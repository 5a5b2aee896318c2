package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	repository "github.com/undrgrnd/hype/internal/adapters/repository"
	"github.com/undrgrnd/hype/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemStore_PutGet(t *testing.T) {
	Convey("Given an empty store", t, func() {
		store := repository.NewMemStore()
		defer func() { _ = store.Close() }()
		ctx := context.Background()

		Convey("When getting an unknown id", func() {
			_, err := store.Get(ctx, "missing")

			Convey("Then ErrNotFound is returned", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When putting and getting an event", func() {
			err := store.Put(ctx, model.Event{ID: "e1", Title: "Warehouse Rave", Hype: 3})
			So(err, ShouldBeNil)

			got, err := store.Get(ctx, "e1")

			Convey("Then the stored event comes back", func() {
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "Warehouse Rave")
				So(got.Hype, ShouldEqual, 3)
			})

			Convey("And the count reflects it", func() {
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When mutating a returned copy", func() {
			So(store.Put(ctx, model.Event{ID: "e1", HypedBy: []string{"u1"}}), ShouldBeNil)

			got, err := store.Get(ctx, "e1")
			So(err, ShouldBeNil)
			got.HypedBy[0] = "tampered"
			got.Title = "tampered"

			Convey("Then the stored record is unaffected", func() {
				again, err := store.Get(ctx, "e1")
				So(err, ShouldBeNil)
				So(again.HypedBy, ShouldResemble, []string{"u1"})
				So(again.Title, ShouldEqual, "")
			})
		})
	})
}

func TestMemStore_List(t *testing.T) {
	Convey("Given a store preloaded with events", t, func() {
		store := repository.NewMemStore(repository.WithEvents(
			model.Event{ID: "b"},
			model.Event{ID: "a"},
			model.Event{ID: "c"},
		))
		defer func() { _ = store.Close() }()
		ctx := context.Background()

		Convey("When listing", func() {
			events := store.List(ctx)

			Convey("Then the snapshot is ordered by id", func() {
				So(events, ShouldHaveLength, 3)
				So(events[0].ID, ShouldEqual, "a")
				So(events[1].ID, ShouldEqual, "b")
				So(events[2].ID, ShouldEqual, "c")
			})
		})
	})
}

func TestMemStore_Update(t *testing.T) {
	Convey("Given a store with one event", t, func() {
		store := repository.NewMemStore(repository.WithEvents(model.Event{ID: "e1", Hype: 1}))
		defer func() { _ = store.Close() }()
		ctx := context.Background()

		Convey("When updating it", func() {
			updated, err := store.Update(ctx, "e1", func(e model.Event) (model.Event, error) {
				e.Hype++
				return e, nil
			})

			Convey("Then the mutation is applied and returned", func() {
				So(err, ShouldBeNil)
				So(updated.Hype, ShouldEqual, 2)

				stored, err := store.Get(ctx, "e1")
				So(err, ShouldBeNil)
				So(stored.Hype, ShouldEqual, 2)
			})
		})

		Convey("When the transaction tries to change the id", func() {
			updated, err := store.Update(ctx, "e1", func(e model.Event) (model.Event, error) {
				e.ID = "other"
				return e, nil
			})

			Convey("Then identity is preserved", func() {
				So(err, ShouldBeNil)
				So(updated.ID, ShouldEqual, "e1")
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When updating an unknown id", func() {
			_, err := store.Update(ctx, "missing", func(e model.Event) (model.Event, error) {
				return e, nil
			})

			Convey("Then ErrNotFound is returned", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When many writers increment concurrently", func() {
			const writers = 50
			var wg sync.WaitGroup
			wg.Add(writers)
			for i := 0; i < writers; i++ {
				go func() {
					defer wg.Done()
					_, _ = store.Update(ctx, "e1", func(e model.Event) (model.Event, error) {
						e.Hype++
						return e, nil
					})
				}()
			}
			wg.Wait()

			Convey("Then no increment is lost", func() {
				stored, err := store.Get(ctx, "e1")
				So(err, ShouldBeNil)
				So(stored.Hype, ShouldEqual, 1+writers)
			})
		})
	})
}

func TestMemStore_Watch(t *testing.T) {
	Convey("Given a store with a watcher", t, func() {
		store := repository.NewMemStore(repository.WithEvents(model.Event{ID: "e1"}))
		defer func() { _ = store.Close() }()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		snapshots := store.Watch(ctx)

		Convey("When subscribing", func() {
			Convey("Then the current state arrives immediately", func() {
				select {
				case snap := <-snapshots:
					So(snap, ShouldHaveLength, 1)
					So(snap[0].ID, ShouldEqual, "e1")
				case <-time.After(time.Second):
					So("timed out waiting for seed snapshot", ShouldBeEmpty)
				}
			})
		})

		Convey("When a write lands", func() {
			<-snapshots // drain the seed
			So(store.Put(context.Background(), model.Event{ID: "e2"}), ShouldBeNil)

			Convey("Then a fresh snapshot is pushed", func() {
				select {
				case snap := <-snapshots:
					So(snap, ShouldHaveLength, 2)
				case <-time.After(time.Second):
					So("timed out waiting for snapshot", ShouldBeEmpty)
				}
			})
		})

		Convey("When the watcher is slow", func() {
			<-snapshots // drain the seed
			So(store.Put(context.Background(), model.Event{ID: "e2"}), ShouldBeNil)
			So(store.Put(context.Background(), model.Event{ID: "e3"}), ShouldBeNil)
			So(store.Put(context.Background(), model.Event{ID: "e4"}), ShouldBeNil)

			Convey("Then stale snapshots are superseded and only the newest remains", func() {
				select {
				case snap := <-snapshots:
					So(snap, ShouldHaveLength, 4)
				case <-time.After(time.Second):
					So("timed out waiting for snapshot", ShouldBeEmpty)
				}
			})
		})

		Convey("When the subscription context is cancelled", func() {
			cancel()

			Convey("Then the channel closes", func() {
				deadline := time.After(time.Second)
				for {
					select {
					case _, ok := <-snapshots:
						if !ok {
							So(ok, ShouldBeFalse)
							return
						}
					case <-deadline:
						So("timed out waiting for close", ShouldBeEmpty)
						return
					}
				}
			})
		})
	})
}

func TestMemStore_Close(t *testing.T) {
	Convey("Given a closed store", t, func() {
		store := repository.NewMemStore()
		ctx := context.Background()
		snapshots := store.Watch(ctx)
		So(store.Close(), ShouldBeNil)

		Convey("When writing after close", func() {
			err := store.Put(ctx, model.Event{ID: "e1"})

			Convey("Then ErrClosed is returned", func() {
				So(err, ShouldEqual, repository.ErrClosed)
			})
		})

		Convey("When updating after close", func() {
			_, err := store.Update(ctx, "e1", func(e model.Event) (model.Event, error) {
				return e, nil
			})

			Convey("Then ErrClosed is returned", func() {
				So(err, ShouldEqual, repository.ErrClosed)
			})
		})

		Convey("When draining the watcher", func() {
			Convey("Then its channel has been closed", func() {
				deadline := time.After(time.Second)
				for {
					select {
					case _, ok := <-snapshots:
						if !ok {
							So(ok, ShouldBeFalse)
							return
						}
					case <-deadline:
						So("timed out waiting for close", ShouldBeEmpty)
						return
					}
				}
			})
		})

		Convey("When subscribing after close", func() {
			late := store.Watch(ctx)

			Convey("Then the channel is already closed", func() {
				select {
				case _, ok := <-late:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					So("timed out waiting for closed channel", ShouldBeEmpty)
				}
			})
		})
	})
}

func TestMemStore_WatchDuringClose(t *testing.T) {
	Convey("Given subscriptions racing shutdown", t, func() {
		Convey("When Watch and Close run concurrently many times over", func() {
			const rounds = 200
			for i := 0; i < rounds; i++ {
				store := repository.NewMemStore(repository.WithEvents(model.Event{ID: "e1"}))
				ctx := context.Background()

				const subscribers = 8
				channels := make(chan (<-chan []model.Event), subscribers)
				var wg sync.WaitGroup
				wg.Add(subscribers + 1)
				for j := 0; j < subscribers; j++ {
					go func() {
						defer wg.Done()
						channels <- store.Watch(ctx)
					}()
				}
				go func() {
					defer wg.Done()
					_ = store.Close()
				}()
				wg.Wait()
				close(channels)

				// Every subscription, whether it landed before or after
				// Close, must end with a closed channel.
				for snapshots := range channels {
					deadline := time.After(time.Second)
					for open := true; open; {
						select {
						case _, ok := <-snapshots:
							open = ok
						case <-deadline:
							So("timed out waiting for watcher shutdown", ShouldBeEmpty)
							return
						}
					}
				}
			}

			Convey("Then no subscription panics or leaks an open channel", func() {
				So(true, ShouldBeTrue)
			})
		})
	})
}
