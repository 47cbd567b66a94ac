package admin

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/store"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenesis(t *testing.T) {
	Convey("Test initializer", t, func() {
		genesis := `
		{
			"conf": {
				"admin": {
					"admin": "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0",
					"supported_tokens": ["IOV", "USDC"]
				}
			}
		}`
		var o autoshare.Options
		So(json.Unmarshal([]byte(genesis), &o), ShouldBeNil)

		db := store.MemStore()
		var init Initializer
		So(init.FromGenesis(o, db), ShouldBeNil)

		Convey("Admin is set", func() {
			admin, err := Admin(db)
			So(err, ShouldBeNil)
			So(admin.String(), ShouldEqual, "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0")
		})

		Convey("Missing fee falls back to the default", func() {
			fee, err := UsageFee(db)
			So(err, ShouldBeNil)
			So(fee, ShouldEqual, DefaultUsageFee)
		})

		Convey("Tokens are supported", func() {
			ok, err := IsTokenSupported(db, "USDC")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			ok, err = IsTokenSupported(db, "ETH")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Test initializer without admin section", t, func() {
		var o autoshare.Options
		So(json.Unmarshal([]byte(`{"conf": {}}`), &o), ShouldBeNil)

		db := store.MemStore()
		var init Initializer
		So(init.FromGenesis(o, db), ShouldBeNil)

		_, err := Admin(db)
		So(errors.ErrNotFound.Is(err), ShouldBeTrue)
	})

	Convey("Test initializer rejects a zero fee", t, func() {
		genesis := `{"conf": {"admin": {"admin": "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0", "usage_fee": 0}}}`
		var o autoshare.Options
		So(json.Unmarshal([]byte(genesis), &o), ShouldBeNil)

		var init Initializer
		err := init.FromGenesis(o, store.MemStore())
		So(errors.ErrAmount.Is(err), ShouldBeTrue)
	})
}
