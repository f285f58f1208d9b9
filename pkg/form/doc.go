// Package form renders a function's parameter schema into a dom tree and
// keeps the tree interactive: dropdowns can switch option (Form.Select) and
// lists can grow (Form.Add).
//
// The rendered shape mirrors the schema one to one so pkg/extract can walk it
// back into JSON:
//
//	record    <fieldset name=N><legend>N</legend>...children...</fieldset><br>
//	dropdown  <fieldset name=N><legend>N</legend><select name="name">...</select><br>
//	          <fieldset name="value">...selected option...</fieldset></fieldset><br>
//	list      <fieldset name=N ftype="list"><legend>N</legend>...items...
//	          <a class="add-button">+</a></fieldset><br><br>
//	primitive <label for=N>N: </label><input name=N ...><br>
//
// Named references render their lookup target under the referencing name.
package form
