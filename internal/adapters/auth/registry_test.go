package auth_test

import (
	"context"
	"testing"

	auth "github.com/undrgrnd/hype/internal/adapters/auth"
	"github.com/undrgrnd/hype/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry_Register(t *testing.T) {
	Convey("Given an empty registry", t, func() {
		reg := auth.NewRegistry()
		ctx := context.Background()

		Convey("When registering a new account", func() {
			id, err := reg.Register(ctx, "fan@example.com", "hunter2", "fan", model.RoleFan)

			Convey("Then an id is assigned", func() {
				So(err, ShouldBeNil)
				So(id, ShouldNotBeEmpty)
			})

			Convey("And the profile is retrievable", func() {
				p, perr := reg.Profile(ctx, id)
				So(perr, ShouldBeNil)
				So(p.Email, ShouldEqual, "fan@example.com")
				So(p.Username, ShouldEqual, "fan")
				So(p.Role, ShouldEqual, model.RoleFan)
			})
		})

		Convey("When registering the same email twice", func() {
			_, err := reg.Register(ctx, "dup@example.com", "pw", "a", model.RoleFan)
			So(err, ShouldBeNil)
			_, err = reg.Register(ctx, "DUP@example.com", "pw", "b", model.RoleFan)

			Convey("Then the second attempt fails regardless of casing", func() {
				So(err, ShouldEqual, auth.ErrEmailTaken)
			})
		})

		Convey("When registering with blank credentials", func() {
			_, err := reg.Register(ctx, "", "pw", "x", model.RoleFan)
			So(err, ShouldEqual, auth.ErrInvalidCredentials)
			_, err = reg.Register(ctx, "x@example.com", "", "x", model.RoleFan)
			So(err, ShouldEqual, auth.ErrInvalidCredentials)
		})

		Convey("When registering with an unknown role", func() {
			id, err := reg.Register(ctx, "odd@example.com", "pw", "odd", model.Role("admin"))
			So(err, ShouldBeNil)

			Convey("Then the role defaults to fan", func() {
				role, rerr := reg.Role(ctx, id)
				So(rerr, ShouldBeNil)
				So(role, ShouldEqual, model.RoleFan)
			})
		})
	})
}

func TestRegistry_Login(t *testing.T) {
	Convey("Given a registry with one account", t, func() {
		reg := auth.NewRegistry()
		ctx := context.Background()
		id, err := reg.Register(ctx, "fan@example.com", "hunter2", "fan", model.RoleFan)
		So(err, ShouldBeNil)

		Convey("When logging in with correct credentials", func() {
			got, lerr := reg.Login(ctx, "fan@example.com", "hunter2")

			Convey("Then the account id comes back", func() {
				So(lerr, ShouldBeNil)
				So(got, ShouldEqual, id)
			})
		})

		Convey("When the email casing differs", func() {
			got, lerr := reg.Login(ctx, "FAN@Example.Com", "hunter2")

			Convey("Then login still succeeds", func() {
				So(lerr, ShouldBeNil)
				So(got, ShouldEqual, id)
			})
		})

		Convey("When the password is wrong", func() {
			_, lerr := reg.Login(ctx, "fan@example.com", "wrong")

			Convey("Then credentials are rejected", func() {
				So(lerr, ShouldEqual, auth.ErrInvalidCredentials)
			})
		})

		Convey("When the account does not exist", func() {
			_, lerr := reg.Login(ctx, "ghost@example.com", "hunter2")

			Convey("Then the same error is returned", func() {
				So(lerr, ShouldEqual, auth.ErrInvalidCredentials)
			})
		})
	})
}

func TestRegistry_ProfileUpdates(t *testing.T) {
	Convey("Given a registered account", t, func() {
		reg := auth.NewRegistry()
		ctx := context.Background()
		id, err := reg.Register(ctx, "fan@example.com", "pw", "fan", model.RoleFan)
		So(err, ShouldBeNil)

		Convey("When setting preferred genres", func() {
			genres := []string{"Techno", "Jazz"}
			So(reg.SetGenres(ctx, id, genres), ShouldBeNil)

			Convey("Then the profile reflects them", func() {
				p, perr := reg.Profile(ctx, id)
				So(perr, ShouldBeNil)
				So(p.Genres, ShouldResemble, []string{"Techno", "Jazz"})
			})

			Convey("And mutating the caller's slice does not leak in", func() {
				genres[0] = "tampered"
				p, perr := reg.Profile(ctx, id)
				So(perr, ShouldBeNil)
				So(p.Genres[0], ShouldEqual, "Techno")
			})
		})

		Convey("When setting a city", func() {
			So(reg.SetCity(ctx, id, "Berlin"), ShouldBeNil)

			p, perr := reg.Profile(ctx, id)
			So(perr, ShouldBeNil)
			So(p.City, ShouldEqual, "Berlin")
		})

		Convey("When touching an unknown user", func() {
			So(reg.SetGenres(ctx, "ghost", nil), ShouldEqual, auth.ErrUnknownUser)
			So(reg.SetCity(ctx, "ghost", "x"), ShouldEqual, auth.ErrUnknownUser)
			_, perr := reg.Profile(ctx, "ghost")
			So(perr, ShouldEqual, auth.ErrUnknownUser)
		})
	})
}
