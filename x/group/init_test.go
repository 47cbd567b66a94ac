package group

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
			"group": [
				{
					"id": "0000000000000000000000000000000000000000000000000000000000000002",
					"name": "second",
					"creator": "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0",
					"usage_count": 5,
					"members": [
						{"address": "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0", "percentage": 70},
						{"address": "CE5D5A5CA8C7D545D7756D3677234D81622BA297", "percentage": 30}
					]
				},
				{
					"id": "0000000000000000000000000000000000000000000000000000000000000001",
					"name": "first",
					"creator": "CE5D5A5CA8C7D545D7756D3677234D81622BA297",
					"usage_count": 1,
					"inactive": true
				}
			]
		}`
		var o autoshare.Options
		So(json.Unmarshal([]byte(genesis), &o), ShouldBeNil)

		db := store.MemStore()
		var init Initializer
		So(init.FromGenesis(o, db), ShouldBeNil)

		Convey("Groups keep the genesis order", func() {
			all, err := All(db)
			So(err, ShouldBeNil)
			So(len(all), ShouldEqual, 2)
			So(all[0].Name, ShouldEqual, "second")
			So(all[1].Name, ShouldEqual, "first")
		})

		Convey("Usages are paid", func() {
			g, err := Get(db, id(2))
			So(err, ShouldBeNil)
			So(g.UsageCount, ShouldEqual, 5)
			So(g.TotalUsagesPaid, ShouldEqual, 5)
			So(g.Active, ShouldBeTrue)
			So(len(g.Members), ShouldEqual, 2)
		})

		Convey("Inactive flag is kept", func() {
			active, err := IsActive(db, id(1))
			So(err, ShouldBeNil)
			So(active, ShouldBeFalse)
		})

		Convey("Groups can be found by creator", func() {
			creator, err := autoshare.ParseAddress("CE5D5A5CA8C7D545D7756D3677234D81622BA297")
			So(err, ShouldBeNil)
			groups, err := ByCreator(db, creator)
			So(err, ShouldBeNil)
			So(len(groups), ShouldEqual, 1)
			So(groups[0].ID, ShouldEqual, id(1))
		})

		Convey("No payment is recorded", func() {
			payments, err := PaymentsByGroup(db, id(2))
			So(err, ShouldBeNil)
			So(payments, ShouldBeEmpty)
		})
	})

	Convey("Test initializer rejects a broken split", t, func() {
		genesis := `{"group": [{
			"id": "0000000000000000000000000000000000000000000000000000000000000001",
			"creator": "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0",
			"usage_count": 1,
			"members": [{"address": "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0", "percentage": 70}]
		}]}`
		var o autoshare.Options
		So(json.Unmarshal([]byte(genesis), &o), ShouldBeNil)

		var init Initializer
		err := init.FromGenesis(o, store.MemStore())
		So(ErrInvalidTotalPercentage.Is(err), ShouldBeTrue)
	})

	Convey("Test initializer rejects a duplicated id", t, func() {
		genesis := `{"group": [
			{"id": "0000000000000000000000000000000000000000000000000000000000000001", "creator": "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0"},
			{"id": "0000000000000000000000000000000000000000000000000000000000000001", "creator": "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0"}
		]}`
		var o autoshare.Options
		So(json.Unmarshal([]byte(genesis), &o), ShouldBeNil)

		var init Initializer
		err := init.FromGenesis(o, store.MemStore())
		So(errors.ErrDuplicate.Is(err), ShouldBeTrue)
	})
}
