package apipoolv1

import (
	"github.com/fulldump/box"

	"github.com/fulldump/slotpool/service"
)

func BuildV1Pool(v1 *box.R, s service.Servicer) *box.R {

	pools := v1.Resource("/pools").
		WithActions(
			box.Get(listPools),
			box.Post(createPool),
		)

	v1.Resource("/pools/{poolName}").
		WithActions(
			box.Get(getPool),
			box.ActionPost(alloc),
			box.ActionPost(get),
			box.ActionPost(find),
			box.ActionPost(release),
			box.ActionPost(defrag),
			box.ActionPost(trim),
			box.ActionPost(clearPool).WithName("clear"),
			box.ActionPost(dropPool),
		)

	return pools
}
